// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import (
	"encoding/json"
	"time"
)

// UploadResponse is the response body after submitting a batch of files.
type UploadResponse struct {
	JobID      string `json:"job_id"`
	TotalFiles int    `json:"total_files"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// DocumentView represents one document inside a job status response.
type DocumentView struct {
	DocID    string          `json:"doc_id"`
	Filename string          `json:"filename"`
	Status   string          `json:"status"`
	Progress int             `json:"progress"`
	Error    string          `json:"error"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// StatusResponse is the full status view for one job.
type StatusResponse struct {
	JobID      string         `json:"job_id"`
	Status     string         `json:"status"`
	TotalFiles int            `json:"total_files"`
	Completed  int            `json:"completed"`
	Failed     int            `json:"failed"`
	Progress   float64        `json:"progress"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Error      string         `json:"error,omitempty"`
	Documents  []DocumentView `json:"documents"`
}

// JobSummary is one job in the list response, without per-document detail.
type JobSummary struct {
	JobID      string    `json:"job_id"`
	Status     string    `json:"status"`
	TotalFiles int       `json:"total_files"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Progress   float64   `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListJobsResponse is the response body for listing all known jobs.
type ListJobsResponse struct {
	Total int          `json:"total"`
	Jobs  []JobSummary `json:"jobs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
