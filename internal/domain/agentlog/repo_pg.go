package agentlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type logRepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &logRepoPG{pool: pool}
}

func (r *logRepoPG) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Result == nil {
		e.Result = map[string]interface{}{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO agent_logs (id, patient_id, agent, action, reasoning, result, error, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING timestamp`,
		e.ID, e.PatientID, e.Agent, e.Action, e.Reasoning, e.Result, e.Error,
	)
	return row.Scan(&e.Timestamp)
}

func (r *logRepoPG) ListByPatient(ctx context.Context, patientID string) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, agent, action, reasoning, result, error, timestamp
		FROM agent_logs
		WHERE patient_id = $1
		ORDER BY timestamp DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Agent, &e.Action, &e.Reasoning, &e.Result, &e.Error, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
