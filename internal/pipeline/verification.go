package pipeline

import (
	"context"
	"time"
)

const verificationTimeout = 10 * time.Second

// runVerification notifies the downstream verification service. The
// stage is advisory: any failure is logged as a warning and the
// pipeline continues untouched.
func (p *Pipeline) runVerification(ctx context.Context, patientID string) {
	callCtx, cancel := context.WithTimeout(ctx, verificationTimeout)
	defer cancel()

	if err := p.verifier.NotifyExtractionComplete(callCtx, patientID); err != nil {
		p.log.Warn().Err(err).Str("patient_id", patientID).Msg("verification notify failed")
		p.logAction(ctx, patientID, AgentVerification, "verification_failed",
			"Downstream verification service could not be notified", nil, err.Error())
		return
	}
	p.log.Debug().Str("patient_id", patientID).Msg("verification notified")
	p.logAction(ctx, patientID, AgentVerification, "verification_complete",
		"Downstream verification service notified of completed extraction", nil, "")
}
