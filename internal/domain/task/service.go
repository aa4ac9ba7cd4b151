package task

import (
	"context"
	"fmt"
)

type Service struct {
	tasks Repository
}

func NewService(tasks Repository) *Service {
	return &Service{tasks: tasks}
}

var validCategories = map[string]bool{
	CategoryMedical:     true,
	CategoryOperational: true,
	CategoryFinancial:   true,
}

var validPriorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusFailed:     true,
}

func (s *Service) CreateTask(ctx context.Context, t *Task) error {
	if t.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !validCategories[t.Category] {
		return fmt.Errorf("invalid category: %s", t.Category)
	}
	if !validPriorities[t.Priority] {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !validStatuses[t.Status] {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return s.tasks.Create(ctx, t)
}

func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) ListTasksByPatient(ctx context.Context, patientID string) ([]*Task, error) {
	return s.tasks.ListByPatient(ctx, patientID)
}

func (s *Service) UpdateTaskStatus(ctx context.Context, id, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	return s.tasks.UpdateStatus(ctx, id, status)
}
