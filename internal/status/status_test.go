package status

import (
	"errors"
	"testing"

	"regdoc/internal/store"
)

func TestGetStatus_Unknown(t *testing.T) {
	svc := New(store.New())
	if _, err := svc.GetStatus("no-such-job"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetStatus() error = %v, want ErrNotFound", err)
	}
}

func TestGetStatus_NewJob(t *testing.T) {
	s := store.New()
	job, _ := s.CreateJob([]string{"a.txt", "b.txt", "c.txt"})

	resp, err := New(s).GetStatus(job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != "pending" {
		t.Errorf("status = %s, want pending", resp.Status)
	}
	if resp.TotalFiles != 3 {
		t.Errorf("total_files = %d, want 3", resp.TotalFiles)
	}
	if resp.Completed != 0 || resp.Failed != 0 {
		t.Errorf("counts = %d/%d, want 0/0", resp.Completed, resp.Failed)
	}
	if resp.Progress != 0 {
		t.Errorf("progress = %v, want 0", resp.Progress)
	}
	if len(resp.Documents) != 3 {
		t.Fatalf("got %d documents, want 3", len(resp.Documents))
	}
	for i, doc := range resp.Documents {
		if doc.Status != "pending" || doc.Progress != 0 {
			t.Errorf("document %d = %s/%d, want pending/0", i, doc.Status, doc.Progress)
		}
	}
}

func TestGetStatus_MixedOutcome(t *testing.T) {
	s := store.New()
	job, _ := s.CreateJob([]string{"a.txt", "b.txt", "c.txt"})

	for i := 0; i < 2; i++ {
		s.UpdateDocument(job.ID, job.Documents[i].ID, store.DocumentUpdate{
			Status:   store.StatusCompleted,
			Progress: 100,
		})
	}
	s.UpdateDocument(job.ID, job.Documents[2].ID, store.DocumentUpdate{
		Status:   store.StatusFailed,
		Progress: 0,
		Error:    "extraction failed",
	})

	resp, err := New(s).GetStatus(job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != "completed" {
		t.Errorf("status = %s, want completed", resp.Status)
	}
	if resp.Completed != 2 || resp.Failed != 1 {
		t.Errorf("counts = %d/%d, want 2/1", resp.Completed, resp.Failed)
	}
	// mean(100, 100, 0) = 66.666..., rounded to one decimal.
	if resp.Progress != 66.7 {
		t.Errorf("progress = %v, want 66.7", resp.Progress)
	}
	if resp.Documents[2].Error != "extraction failed" {
		t.Errorf("failed document error = %q", resp.Documents[2].Error)
	}
}

func TestGetStatus_ProgressIsMeanOfDocuments(t *testing.T) {
	s := store.New()
	job, _ := s.CreateJob([]string{"a.txt", "b.txt"})

	s.UpdateDocument(job.ID, job.Documents[0].ID, store.DocumentUpdate{
		Status:   store.StatusProcessing,
		Progress: 30,
	})
	s.UpdateDocument(job.ID, job.Documents[1].ID, store.DocumentUpdate{
		Status:   store.StatusProcessing,
		Progress: 90,
	})

	resp, _ := New(s).GetStatus(job.ID)
	if resp.Progress != 60 {
		t.Errorf("progress = %v, want 60", resp.Progress)
	}
	if resp.Status != "processing" {
		t.Errorf("status = %s, want processing", resp.Status)
	}
}

func TestListJobs(t *testing.T) {
	s := store.New()
	svc := New(s)

	empty := svc.ListJobs()
	if empty.Total != 0 || len(empty.Jobs) != 0 {
		t.Errorf("empty store list = %d/%d entries", empty.Total, len(empty.Jobs))
	}

	first, _ := s.CreateJob([]string{"a.txt"})
	second, _ := s.CreateJob([]string{"b.txt", "c.txt"})

	resp := svc.ListJobs()
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Jobs[0].JobID != first.ID || resp.Jobs[1].JobID != second.ID {
		t.Error("jobs are not in insertion order")
	}
	if resp.Jobs[1].TotalFiles != 2 {
		t.Errorf("second job total_files = %d, want 2", resp.Jobs[1].TotalFiles)
	}
}
