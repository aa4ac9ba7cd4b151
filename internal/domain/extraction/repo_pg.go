package extraction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type extractionRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &extractionRepoPG{pool: pool}
}

const extractionCols = `id, patient_id, labs, vitals, pharmacy_pending, radiology_pending,
	billing_pending, doctor_notes, procedures, nursing_notes, discharge_blockers, raw_data, extracted_at`

func scanExtraction(row pgx.Row) (*ExtractedData, error) {
	var e ExtractedData
	err := row.Scan(
		&e.ID, &e.PatientID, &e.Labs, &e.Vitals, &e.PharmacyPending, &e.RadiologyPending,
		&e.BillingPending, &e.DoctorNotes, &e.Procedures, &e.NursingNotes, &e.DischargeBlockers,
		&e.RawData, &e.ExtractedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *extractionRepoPG) Create(ctx context.Context, e *ExtractedData) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Normalize()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO extracted_data (id, patient_id, labs, vitals, pharmacy_pending,
			radiology_pending, billing_pending, doctor_notes, procedures, nursing_notes,
			discharge_blockers, raw_data, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING extracted_at`,
		e.ID, e.PatientID, e.Labs, e.Vitals, e.PharmacyPending,
		e.RadiologyPending, e.BillingPending, e.DoctorNotes, e.Procedures, e.NursingNotes,
		e.DischargeBlockers, e.RawData,
	)
	return row.Scan(&e.ExtractedAt)
}

func (r *extractionRepoPG) LatestByPatient(ctx context.Context, patientID string) (*ExtractedData, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+extractionCols+`
		FROM extracted_data
		WHERE patient_id = $1
		ORDER BY extracted_at DESC
		LIMIT 1`, patientID)
	e, err := scanExtraction(row)
	if err != nil {
		return nil, err
	}
	e.Normalize()
	return e, nil
}
