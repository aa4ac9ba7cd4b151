// Package pipeline runs the discharge readiness workflow for a patient:
// extraction of clinical data, downstream verification, and task
// synthesis. Stages absorb external failures into deterministic
// fallbacks; the pipeline always converges to a stored snapshot and a
// task list.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dischargeflow/dischargeflow/internal/domain/agentlog"
	"github.com/dischargeflow/dischargeflow/internal/domain/extraction"
	"github.com/dischargeflow/dischargeflow/internal/domain/patient"
	"github.com/dischargeflow/dischargeflow/internal/domain/task"
)

// Agent names recorded in the action log.
const (
	AgentExtraction    = "extraction_agent"
	AgentVerification  = "verification_agent"
	AgentTaskGenerator = "task_generator_agent"
)

// Extractor is the browser automation agent that pulls clinical data
// from the hospital portal.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// Verifier is the downstream service notified after each extraction.
type Verifier interface {
	NotifyExtractionComplete(ctx context.Context, patientID string) error
}

// TaskModel drafts discharge tasks from an extraction snapshot.
type TaskModel interface {
	GenerateTasks(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Pipeline struct {
	patients    patient.Repository
	tasks       task.Repository
	extractions extraction.Repository
	logs        agentlog.Repository

	extractor Extractor
	verifier  Verifier
	model     TaskModel

	timeout time.Duration
	log     zerolog.Logger
}

func New(
	patients patient.Repository,
	tasks task.Repository,
	extractions extraction.Repository,
	logs agentlog.Repository,
	extractor Extractor,
	verifier Verifier,
	model TaskModel,
	timeout time.Duration,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		patients:    patients,
		tasks:       tasks,
		extractions: extractions,
		logs:        logs,
		extractor:   extractor,
		verifier:    verifier,
		model:       model,
		timeout:     timeout,
		log:         log,
	}
}

// logAction appends an audit entry. A failed write is logged and
// swallowed; the audit trail never blocks the pipeline.
func (p *Pipeline) logAction(ctx context.Context, patientID, agent, action string, reasoning string, result map[string]interface{}, errText string) {
	e := &agentlog.Entry{
		PatientID: patientID,
		Agent:     agent,
		Action:    action,
		Result:    result,
	}
	if reasoning != "" {
		e.Reasoning = &reasoning
	}
	if errText != "" {
		e.Error = &errText
	}
	if err := p.logs.Create(ctx, e); err != nil {
		p.log.Error().Err(err).
			Str("patient_id", patientID).
			Str("action", action).
			Msg("failed to write agent log")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
