package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a job or document id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrNoDocuments is returned when a batch is created with zero files.
	ErrNoDocuments = errors.New("batch contains no documents")
)

// DocumentUpdate carries the fields a pipeline worker writes back
// after a stage boundary or a failure.
type DocumentUpdate struct {
	Status   Status
	Progress int
	Error    string
	Result   json.RawMessage
}

// Store is a concurrency-safe, in-memory mapping from job id to Job.
// It is the single mutation point for all job and document state.
type Store struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	order []string // job ids in insertion order
}

// New creates an empty store.
func New() *Store {
	return &Store{
		jobs: make(map[string]*Job),
	}
}

// CreateJob allocates a new job with one pending document per filename.
// The document order matches the submission order.
func (s *Store) CreateJob(filenames []string) (*Job, error) {
	if len(filenames) == 0 {
		return nil, ErrNoDocuments
	}

	now := time.Now().UTC()
	job := &Job{
		ID:         uuid.NewString(),
		Status:     StatusPending,
		TotalFiles: len(filenames),
		Documents:  make([]Document, 0, len(filenames)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, name := range filenames {
		job.Documents = append(job.Documents, Document{
			ID:        uuid.NewString(),
			JobID:     job.ID,
			Filename:  name,
			Status:    StatusPending,
			UpdatedAt: now,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)

	return cloneJob(job), nil
}

// GetJob returns a snapshot of the job consistent at the time of the call.
// Mutations after the call are not reflected in the returned value.
func (s *Store) GetJob(jobID string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	return cloneJob(job), nil
}

// ListJobs returns snapshots of all known jobs, oldest first.
func (s *Store) ListJobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, cloneJob(s.jobs[id]))
	}
	return jobs
}

// SetJobStatus sets the job-level status and optional top-level error.
func (s *Store) SetJobStatus(jobID string, status Status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateDocument mutates one document in place and refreshes both the
// document and job timestamps. The write and the terminal check happen
// under one lock: when the update makes the last document terminal, the
// job transitions to completed in the same critical section, so a reader
// can never observe all documents terminal with the job still processing.
//
// The returned jobDone is true exactly once, for the update that made
// the job terminal.
func (s *Store) UpdateDocument(jobID, docID string, upd DocumentUpdate) (jobDone bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return false, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	var doc *Document
	for i := range job.Documents {
		if job.Documents[i].ID == docID {
			doc = &job.Documents[i]
			break
		}
	}
	if doc == nil {
		return false, fmt.Errorf("document %s in job %s: %w", docID, jobID, ErrNotFound)
	}

	now := time.Now().UTC()
	doc.Status = upd.Status
	doc.Progress = upd.Progress
	doc.Error = upd.Error
	if upd.Result != nil {
		doc.Result = upd.Result
	}
	doc.UpdatedAt = now
	job.UpdatedAt = now

	if job.Status == StatusPending && upd.Status == StatusProcessing {
		job.Status = StatusProcessing
	}

	if job.Status.Terminal() {
		return false, nil
	}
	for i := range job.Documents {
		if !job.Documents[i].Status.Terminal() {
			return false, nil
		}
	}
	// All documents terminal: the job completes even if some failed.
	job.Status = StatusCompleted
	return true, nil
}

// CountActive returns the number of jobs not yet in a terminal state.
// Used by the observable gauge registered at startup.
func (s *Store) CountActive() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			n++
		}
	}
	return n
}

func cloneJob(job *Job) *Job {
	cp := *job
	cp.Documents = make([]Document, len(job.Documents))
	copy(cp.Documents, job.Documents)
	for i := range cp.Documents {
		if res := job.Documents[i].Result; res != nil {
			cp.Documents[i].Result = json.RawMessage(append([]byte(nil), res...))
		}
	}
	return &cp
}
