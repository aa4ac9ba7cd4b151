package agentlog

import "time"

// Entry is one append-only record of an agent action. Entries are never
// updated or deleted once written.
type Entry struct {
	ID        string                 `db:"id" json:"id"`
	PatientID string                 `db:"patient_id" json:"patient_id"`
	Agent     string                 `db:"agent" json:"agent"`
	Action    string                 `db:"action" json:"action"`
	Reasoning *string                `db:"reasoning" json:"reasoning,omitempty"`
	Result    map[string]interface{} `db:"result" json:"result,omitempty"`
	Error     *string                `db:"error" json:"error,omitempty"`
	Timestamp time.Time              `db:"timestamp" json:"timestamp"`
}
