// Package status projects store state into the client-facing views.
package status

import (
	"math"

	"regdoc/internal/store"
	"regdoc/pkg/api"
)

// Service is a read-only projection over the job store.
type Service struct {
	store *store.Store
}

// New creates the status service.
func New(s *store.Store) *Service {
	return &Service{store: s}
}

// GetStatus returns the full status view for one job, including the
// per-document list. Job progress is derived from document progress on
// every read, never stored.
func (s *Service) GetStatus(jobID string) (*api.StatusResponse, error) {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	completed, failed := countTerminal(job)
	resp := &api.StatusResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		TotalFiles: job.TotalFiles,
		Completed:  completed,
		Failed:     failed,
		Progress:   jobProgress(job),
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
		Error:      job.Error,
		Documents:  make([]api.DocumentView, 0, len(job.Documents)),
	}
	for _, doc := range job.Documents {
		resp.Documents = append(resp.Documents, api.DocumentView{
			DocID:    doc.ID,
			Filename: doc.Filename,
			Status:   string(doc.Status),
			Progress: doc.Progress,
			Error:    doc.Error,
			Result:   doc.Result,
		})
	}
	return resp, nil
}

// ListJobs returns summaries for every known job, oldest first.
func (s *Service) ListJobs() *api.ListJobsResponse {
	jobs := s.store.ListJobs()

	resp := &api.ListJobsResponse{
		Total: len(jobs),
		Jobs:  make([]api.JobSummary, 0, len(jobs)),
	}
	for _, job := range jobs {
		completed, failed := countTerminal(job)
		resp.Jobs = append(resp.Jobs, api.JobSummary{
			JobID:      job.ID,
			Status:     string(job.Status),
			TotalFiles: job.TotalFiles,
			Completed:  completed,
			Failed:     failed,
			Progress:   jobProgress(job),
			CreatedAt:  job.CreatedAt,
			UpdatedAt:  job.UpdatedAt,
		})
	}
	return resp
}

// jobProgress is the mean of the document progress values, rounded to
// one decimal place for a stable wire representation.
func jobProgress(job *store.Job) float64 {
	if len(job.Documents) == 0 {
		return 0
	}
	var sum int
	for _, doc := range job.Documents {
		sum += doc.Progress
	}
	mean := float64(sum) / float64(len(job.Documents))
	return math.Round(mean*10) / 10
}

func countTerminal(job *store.Job) (completed, failed int) {
	for _, doc := range job.Documents {
		switch doc.Status {
		case store.StatusCompleted:
			completed++
		case store.StatusFailed:
			failed++
		}
	}
	return completed, failed
}
