package patient

import "time"

// Discharge status values. Transitions are monotonic
// (pending -> in_progress -> ready|blocked -> completed) except that
// ready and blocked may oscillate as task generation re-evaluates the
// blocker list.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusBlocked    = "blocked"
	StatusCompleted  = "completed"
)

// Readmission risk bands.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// HighRiskThreshold is the readmission risk score at or above which a
// patient counts as high risk.
const HighRiskThreshold = 0.7

// Patient maps to the patients collection. Patients carrying an MRN are
// discharge-pipeline patients; they are never hard-deleted.
type Patient struct {
	ID                    string     `db:"id" json:"id"`
	MRN                   string     `db:"mrn" json:"mrn"`
	Name                  string     `db:"name" json:"name"`
	Age                   *int       `db:"age" json:"age,omitempty"`
	AdmissionID           string     `db:"admission_id" json:"admission_id"`
	Diagnosis             *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Ward                  *string    `db:"ward" json:"ward,omitempty"`
	Bed                   *string    `db:"bed" json:"bed,omitempty"`
	ReadinessScore        *float64   `db:"readiness_score" json:"readiness_score,omitempty"`
	ReadmissionRisk       *float64   `db:"readmission_risk" json:"readmission_risk,omitempty"`
	RiskLevel             *string    `db:"risk_level" json:"readmission_risk_level,omitempty"`
	DelayReason           *string    `db:"delay_reason" json:"delay_reason,omitempty"`
	ExpectedDischargeAt   *time.Time `db:"expected_discharge_at" json:"expected_discharge_at,omitempty"`
	DischargeStatus       string     `db:"discharge_status" json:"discharge_status"`
	ReadyForDischargeEval bool       `db:"ready_for_discharge_eval" json:"ready_for_discharge_eval"`
	ExtractionCompleted   bool       `db:"extraction_completed" json:"extraction_completed"`
	TasksGenerated        bool       `db:"tasks_generated" json:"tasks_generated"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// DeriveRiskLevel bands a 0-1 readmission risk score. Returns nil when
// no score is present.
func DeriveRiskLevel(risk *float64) *string {
	if risk == nil {
		return nil
	}
	level := RiskLow
	switch {
	case *risk >= HighRiskThreshold:
		level = RiskHigh
	case *risk >= 0.4:
		level = RiskMedium
	}
	return &level
}

// IsHighRisk reports whether the patient counts toward the high-risk KPI,
// either by score or by stored band.
func (p *Patient) IsHighRisk() bool {
	if p.ReadmissionRisk != nil && *p.ReadmissionRisk >= HighRiskThreshold {
		return true
	}
	return p.RiskLevel != nil && *p.RiskLevel == RiskHigh
}
