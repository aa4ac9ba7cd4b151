package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no task exists for the given id.
var ErrNotFound = errors.New("task not found")

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Task, error)
	// ListByPatients returns every task belonging to any of the given
	// patients, for the aggregation engine.
	ListByPatients(ctx context.Context, patientIDs []string) ([]*Task, error)
	// UpdateStatus moves a task to the given status, setting completed_at
	// when the status is completed and clearing it otherwise.
	UpdateStatus(ctx context.Context, id, status string) error
}
