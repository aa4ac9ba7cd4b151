package extraction

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("extraction not found")

type Repository interface {
	Create(ctx context.Context, e *ExtractedData) error
	LatestByPatient(ctx context.Context, patientID string) (*ExtractedData, error)
}
