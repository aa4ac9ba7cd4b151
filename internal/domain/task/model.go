package task

import "time"

// Task categories.
const (
	CategoryMedical     = "medical"
	CategoryOperational = "operational"
	CategoryFinancial   = "financial"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Task is one actionable discharge-blocking or discharge-supporting
// item, owned by a patient. CompletedAt is set if and only if the
// status is completed.
type Task struct {
	ID          string     `db:"id" json:"id"`
	PatientID   string     `db:"patient_id" json:"patient_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	Priority    string     `db:"priority" json:"priority"`
	Status      string     `db:"status" json:"status"`
	Deadline    *time.Time `db:"deadline" json:"deadline,omitempty"`
	AssignedTo  *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// IsCompleted reports whether the task no longer counts as pending work.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
