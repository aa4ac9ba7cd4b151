package patient

import (
	"context"
	"fmt"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusReady:      true,
	StatusBlocked:    true,
	StatusCompleted:  true,
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.AdmissionID == "" {
		return fmt.Errorf("admission_id is required")
	}
	if p.DischargeStatus == "" {
		p.DischargeStatus = StatusPending
	}
	if !validStatuses[p.DischargeStatus] {
		return fmt.Errorf("invalid discharge status: %s", p.DischargeStatus)
	}
	if p.ReadinessScore != nil && (*p.ReadinessScore < 0 || *p.ReadinessScore > 100) {
		return fmt.Errorf("readiness score must be between 0 and 100")
	}
	if p.ReadmissionRisk != nil && (*p.ReadmissionRisk < 0 || *p.ReadmissionRisk > 1) {
		return fmt.Errorf("readmission risk must be between 0 and 1")
	}
	if p.RiskLevel == nil {
		p.RiskLevel = DeriveRiskLevel(p.ReadmissionRisk)
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// MarkReady flags a patient ready for discharge evaluation. The caller
// is responsible for dispatching the extraction pipeline afterwards.
func (s *Service) MarkReady(ctx context.Context, id string) error {
	return s.patients.MarkReady(ctx, id)
}
