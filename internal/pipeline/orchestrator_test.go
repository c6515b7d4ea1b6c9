package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/texi2xml/internal/config"
)

func testConfig(workers, queue int) config.Config {
	return config.Config{
		WorkerCount:  workers,
		MaxQueueSize: queue,
		JobTTL:       time.Hour,
		Formats:      []string{"xml"},
	}
}

func TestOrchestrator_DrainProcessesAll(t *testing.T) {
	dir := t.TempDir()
	o := NewOrchestrator(testConfig(2, 10), testLogger())
	o.Start(context.Background())

	var ids []string
	for i := range 5 {
		src := filepath.Join(dir, fmt.Sprintf("doc%d.texi", i))
		writeFile(t, src, fmt.Sprintf("@chapter Doc %d\nBody.\n", i))
		job := NewJob(src, filepath.Join(dir, "out", fmt.Sprintf("doc%d", i)), o.Formats())
		if err := o.Submit(job); err != nil {
			t.Fatalf("submit: %v", err)
		}
		ids = append(ids, job.ID)
	}
	o.Drain()

	for _, id := range ids {
		job := o.GetJob(id)
		if job == nil {
			t.Fatalf("job %s not found", id)
		}
		if snap := job.Snapshot(); snap.Status != StatusCompleted {
			t.Errorf("job %s: expected completed, got %q (%v)", id, snap.Status, snap.Progress.Errors)
		}
	}
	if o.QueueDepth() != 0 {
		t.Errorf("expected empty queue, got %d", o.QueueDepth())
	}
	if lat := o.Latency(); lat.Count != 5 {
		t.Errorf("expected 5 latency samples, got %d", lat.Count)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// No workers started, so the queue never drains.
	o := NewOrchestrator(testConfig(1, 1), testLogger())

	first := NewJob("a.texi", "out", nil)
	if err := o.Submit(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewJob("b.texi", "out", nil)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %q/%q", snap.Status, snap.Phase)
	}
	if o.GetJob(second.ID) == nil {
		t.Error("expected rejected job to stay queryable")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_StopIsIdempotentWithDrain(t *testing.T) {
	o := NewOrchestrator(testConfig(1, 1), testLogger())
	o.Start(context.Background())
	o.Drain()
	o.Stop()
}
