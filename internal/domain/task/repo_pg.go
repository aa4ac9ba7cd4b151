package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &taskRepoPG{pool: pool}
}

const taskCols = `id, patient_id, title, description, category, priority, status,
	deadline, assigned_to, created_at, completed_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.PatientID, &t.Title, &t.Description, &t.Category, &t.Priority, &t.Status,
		&t.Deadline, &t.AssignedTo, &t.CreatedAt, &t.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, patient_id, title, description, category, priority, status, deadline, assigned_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.PatientID, t.Title, t.Description, t.Category, t.Priority, t.Status, t.Deadline, t.AssignedTo)
	return err
}

func (r *taskRepoPG) GetByID(ctx context.Context, id string) (*Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
}

func (r *taskRepoPG) ListByPatient(ctx context.Context, patientID string) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *taskRepoPG) ListByPatients(ctx context.Context, patientIDs []string) ([]*Task, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+taskCols+` FROM tasks WHERE patient_id = ANY($1) ORDER BY created_at DESC`, patientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *taskRepoPG) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = $2,
		    completed_at = CASE WHEN $2 = 'completed' THEN NOW() ELSE NULL END
		WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
