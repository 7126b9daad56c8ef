package domain

import "time"

// ImportStatus represents the current state of an import run.
type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportCompleted  ImportStatus = "completed"
	ImportFailed     ImportStatus = "failed"
)

// ImportRun tracks one load of operational data into the store.
type ImportRun struct {
	ID           int64        `json:"id" db:"id"`
	Source       string       `json:"source" db:"source"`
	Status       ImportStatus `json:"status" db:"status"`
	TotalRows    int          `json:"total_rows" db:"total_rows"`
	StartedAt    time.Time    `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage string       `json:"error_message,omitempty" db:"error_message"`
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *ImportRun) Finish(at time.Time, err error) {
	r.CompletedAt = &at
	if err != nil {
		r.Status = ImportFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = ImportCompleted
}
