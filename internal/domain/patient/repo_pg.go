package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, mrn, name, age, admission_id, diagnosis, ward, bed,
	readiness_score, readmission_risk, risk_level, delay_reason, expected_discharge_at,
	discharge_status, ready_for_discharge_eval, extraction_completed, tasks_generated,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.Name, &p.Age, &p.AdmissionID, &p.Diagnosis, &p.Ward, &p.Bed,
		&p.ReadinessScore, &p.ReadmissionRisk, &p.RiskLevel, &p.DelayReason, &p.ExpectedDischargeAt,
		&p.DischargeStatus, &p.ReadyForDischargeEval, &p.ExtractionCompleted, &p.TasksGenerated,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, mrn, name, age, admission_id, diagnosis, ward, bed,
			readiness_score, readmission_risk, risk_level, delay_reason, expected_discharge_at,
			discharge_status, ready_for_discharge_eval, extraction_completed, tasks_generated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		p.ID, p.MRN, p.Name, p.Age, p.AdmissionID, p.Diagnosis, p.Ward, p.Bed,
		p.ReadinessScore, p.ReadmissionRisk, p.RiskLevel, p.DelayReason, p.ExpectedDischargeAt,
		p.DischargeStatus, p.ReadyForDischargeEval, p.ExtractionCompleted, p.TasksGenerated)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE mrn <> ''`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients WHERE mrn <> '' ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) ListDischarge(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients WHERE mrn <> '' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) MarkReady(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET ready_for_discharge_eval = TRUE, discharge_status = $2, updated_at = NOW()
		WHERE id = $1`, id, StatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) SetExtractionCompleted(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET extraction_completed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) FinishTaskGeneration(ctx context.Context, id, dischargeStatus string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients
		SET tasks_generated = TRUE, discharge_status = $2, updated_at = NOW()
		WHERE id = $1`, id, dischargeStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
