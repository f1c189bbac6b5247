package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"regdoc/internal/logger"
	"regdoc/internal/pipeline"
	"regdoc/internal/scheduler"
	"regdoc/internal/status"
	"regdoc/internal/store"
	"regdoc/pkg/api"
)

// Submitter hands batches of document tasks to the worker pool.
// Satisfied by *scheduler.Scheduler.
type Submitter interface {
	Submit(tasks []pipeline.Task) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	store          *store.Store
	status         *status.Service
	sched          Submitter
	log            *slog.Logger
	maxUploadBytes int64
}

// NewHandlers creates a Handlers instance with the given dependencies.
func NewHandlers(s *store.Store, svc *status.Service, sched Submitter, log *slog.Logger, maxUploadBytes int64) *Handlers {
	return &Handlers{
		store:          s,
		status:         svc,
		sched:          sched,
		log:            log,
		maxUploadBytes: maxUploadBytes,
	}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, detail string, code int) {
	h.respondJSON(w, code, api.ErrorResponse{Detail: detail})
}

// UploadBatch handles POST /batch/upload.
// It creates the job and document records, enqueues the surviving files
// and returns the job id without waiting for any pipeline to run.
func (h *Handlers) UploadBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.httpError(w, "Invalid multipart request", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.httpError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	type intake struct {
		filename string
		data     []byte
		err      error
	}
	intakes := make([]intake, 0, len(files))
	var failedNames []string
	for _, fh := range files {
		in := intake{filename: fh.Filename}
		if in.filename == "" {
			in.filename = "unnamed"
		}
		in.data, in.err = readUpload(fh, h.maxUploadBytes)
		if in.err != nil {
			failedNames = append(failedNames, in.filename)
		}
		intakes = append(intakes, in)
	}

	if len(failedNames) == len(intakes) {
		h.httpError(w,
			fmt.Sprintf("All uploads failed. Files: %s", strings.Join(failedNames, ", ")),
			http.StatusBadRequest)
		return
	}

	names := make([]string, len(intakes))
	for i, in := range intakes {
		names[i] = in.filename
	}
	job, err := h.store.CreateJob(names)
	if err != nil {
		h.httpError(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	// Partial intake failures become failed documents inside the job.
	payloads := make(map[string][]byte, len(intakes))
	for i, in := range intakes {
		doc := job.Documents[i]
		if in.err != nil {
			if _, uerr := h.store.UpdateDocument(job.ID, doc.ID, store.DocumentUpdate{
				Status: store.StatusFailed,
				Error:  in.err.Error(),
			}); uerr != nil {
				log.Error("intake failure write failed", "job_id", job.ID, "doc_id", doc.ID, "error", uerr)
			}
			continue
		}
		payloads[doc.ID] = in.data
	}

	jobStatus := job.Status
	if err := h.sched.Submit(scheduler.TasksFor(job, payloads)); err != nil {
		// Catastrophic: nothing was scheduled. The job stays queryable
		// with a top-level error; its documents remain as they are.
		msg := fmt.Sprintf("failed to schedule batch: %v", err)
		if serr := h.store.SetJobStatus(job.ID, store.StatusFailed, msg); serr != nil {
			log.Error("job failure write failed", "job_id", job.ID, "error", serr)
		}
		jobStatus = store.StatusFailed
		log.Error("batch scheduling failed", "job_id", job.ID, "error", err)
	} else {
		log.Info("batch accepted",
			"job_id", job.ID,
			"total_files", job.TotalFiles,
			"intake_failures", len(failedNames))
	}

	h.respondJSON(w, http.StatusCreated, api.UploadResponse{
		JobID:      job.ID,
		TotalFiles: job.TotalFiles,
		Status:     string(jobStatus),
		Message:    fmt.Sprintf("Batch accepted. Poll /status/%s for progress.", job.ID),
	})
}

// GetStatus handles GET /status/{job_id}.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")

	resp, err := h.status.GetStatus(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.httpError(w, "Job not found", http.StatusNotFound)
			return
		}
		h.httpError(w, "Failed to read job status", http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// ListJobs handles GET /jobs.
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.status.ListJobs())
}

// Healthz is a liveness probe.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readUpload pulls one file out of the multipart form and applies the
// intake checks: readable, non-empty, within the size limit.
func readUpload(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	if fh.Size > limit {
		return nil, fmt.Errorf("file exceeds upload limit (%d bytes)", limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("unreadable upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("unreadable upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds upload limit (%d bytes)", limit)
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	return data, nil
}
