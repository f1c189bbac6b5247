// Package store owns all job and document state for the batch engine.
package store

import (
	"encoding/json"
	"time"
)

// Status represents the state of a job or a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one batch submission and the documents it owns.
type Job struct {
	ID         string
	Status     Status
	TotalFiles int
	Documents  []Document
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Document represents one file inside a job.
// Result is an opaque classification payload set only on completion.
type Document struct {
	ID        string
	JobID     string
	Filename  string
	Status    Status
	Progress  int
	Error     string
	Result    json.RawMessage
	UpdatedAt time.Time
}
