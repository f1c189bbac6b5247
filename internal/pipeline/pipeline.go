// Package pipeline executes the fixed classification pipeline for one
// document and reports progress at every stage boundary.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"regdoc/internal/classify"
	"regdoc/internal/detect"
	"regdoc/internal/extract"
	"regdoc/internal/store"
)

// Stage identifies one step of the pipeline. Progress percentages are
// fixed per stage and only converted to numbers at the store boundary.
type Stage int

const (
	StageStart Stage = iota
	StageContentLoad
	StageDetection
	StageClassification
	StagePersist
)

// Progress returns the checkpoint percentage reported after the stage.
func (s Stage) Progress() int {
	switch s {
	case StageStart:
		return 10
	case StageContentLoad:
		return 30
	case StageDetection:
		return 60
	case StageClassification:
		return 90
	case StagePersist:
		return 100
	default:
		return 0
	}
}

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageContentLoad:
		return "content_load"
	case StageDetection:
		return "detection"
	case StageClassification:
		return "classification"
	case StagePersist:
		return "persist"
	default:
		return "unknown"
	}
}

// Extractor loads raw file bytes into page-addressed content.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*extract.Content, error)
}

// Detector runs pattern detectors over extracted content.
type Detector interface {
	Detect(ctx context.Context, content *extract.Content) (*detect.Signals, error)
}

// Classifier produces the final category decision.
type Classifier interface {
	Classify(ctx context.Context, content *extract.Content, signals *detect.Signals) (*classify.Result, error)
}

// Task is one document to classify.
type Task struct {
	JobID    string
	DocID    string
	Filename string
	Data     []byte
}

// Runner drives one document through extract, detect, classify, persist.
// A single document is owned by exactly one worker for its lifetime, so
// progress writes for it are strictly ordered.
type Runner struct {
	store      *store.Store
	extractor  Extractor
	detector   Detector
	classifier Classifier
	log        *slog.Logger
}

// NewRunner wires the collaborators together.
func NewRunner(s *store.Store, e Extractor, d Detector, c Classifier, log *slog.Logger) *Runner {
	return &Runner{store: s, extractor: e, detector: d, classifier: c, log: log}
}

// Run executes the pipeline for one task. Failures are recorded on the
// document and never propagate: a sibling document or the scheduler must
// not be taken down by one bad file. The failed document keeps the
// progress of its last finished stage.
func (r *Runner) Run(ctx context.Context, task Task) {
	lastStage := StageStart
	defer func() {
		if rec := recover(); rec != nil {
			r.fail(task, lastStage, fmt.Errorf("panic in stage %s: %v", lastStage, rec))
		}
	}()

	if err := r.report(task, StageStart); err != nil {
		r.log.Error("progress write failed", "job_id", task.JobID, "doc_id", task.DocID, "error", err)
		return
	}

	content, err := r.extractor.Extract(ctx, task.Data, task.Filename)
	if err != nil {
		r.fail(task, lastStage, err)
		return
	}
	lastStage = StageContentLoad
	if err := r.report(task, StageContentLoad); err != nil {
		return
	}

	signals, err := r.detector.Detect(ctx, content)
	if err != nil {
		r.fail(task, lastStage, err)
		return
	}
	lastStage = StageDetection
	if err := r.report(task, StageDetection); err != nil {
		return
	}

	result, err := r.classifier.Classify(ctx, content, signals)
	if err != nil {
		r.fail(task, lastStage, err)
		return
	}
	lastStage = StageClassification
	if err := r.report(task, StageClassification); err != nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		r.fail(task, lastStage, fmt.Errorf("encode result: %w", err))
		return
	}

	jobDone, err := r.store.UpdateDocument(task.JobID, task.DocID, store.DocumentUpdate{
		Status:   store.StatusCompleted,
		Progress: StagePersist.Progress(),
		Result:   payload,
	})
	if err != nil {
		r.log.Error("final write failed", "job_id", task.JobID, "doc_id", task.DocID, "error", err)
		return
	}

	r.log.Info("document classified",
		"job_id", task.JobID,
		"doc_id", task.DocID,
		"filename", task.Filename,
		"category", result.FinalCategory,
		"requires_review", result.RequiresReview,
	)
	if jobDone {
		r.log.Info("job completed", "job_id", task.JobID)
	}
}

// report writes a stage-boundary progress update with status processing.
func (r *Runner) report(task Task, stage Stage) error {
	_, err := r.store.UpdateDocument(task.JobID, task.DocID, store.DocumentUpdate{
		Status:   store.StatusProcessing,
		Progress: stage.Progress(),
	})
	if err != nil {
		r.log.Error("progress write failed",
			"job_id", task.JobID, "doc_id", task.DocID, "stage", stage.String(), "error", err)
	}
	return err
}

// fail records the document as failed with the progress of the last
// stage that finished.
func (r *Runner) fail(task Task, lastStage Stage, cause error) {
	jobDone, err := r.store.UpdateDocument(task.JobID, task.DocID, store.DocumentUpdate{
		Status:   store.StatusFailed,
		Progress: lastStage.Progress(),
		Error:    cause.Error(),
	})
	if err != nil {
		r.log.Error("failure write failed", "job_id", task.JobID, "doc_id", task.DocID, "error", err)
		return
	}

	r.log.Warn("document failed",
		"job_id", task.JobID,
		"doc_id", task.DocID,
		"filename", task.Filename,
		"stage", lastStage.String(),
		"error", cause.Error(),
	)
	if jobDone {
		r.log.Info("job completed", "job_id", task.JobID)
	}
}
