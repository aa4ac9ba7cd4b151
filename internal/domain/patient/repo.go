package patient

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no patient exists for the given id.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// ListDischarge returns every discharge-pipeline patient (those
	// carrying an MRN), unpaginated, for the aggregation engine.
	ListDischarge(ctx context.Context) ([]*Patient, error)
	// MarkReady flags the patient for discharge evaluation and moves its
	// status to in_progress.
	MarkReady(ctx context.Context, id string) error
	// SetExtractionCompleted flips the extraction flag. Flags are only
	// ever set true, never reset.
	SetExtractionCompleted(ctx context.Context, id string) error
	// FinishTaskGeneration flips the tasks_generated flag and records the
	// derived discharge status.
	FinishTaskGeneration(ctx context.Context, id, dischargeStatus string) error
}
