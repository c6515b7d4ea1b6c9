package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/texi2xml/internal/chunker"
	"github.com/dgallion1/texi2xml/internal/config"
)

// Orchestrator runs conversion jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	log      *slog.Logger
	cfg      config.Config
	chunkCfg chunker.Config
	latency  *LatencyStats

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		log:     log,
		cfg:     cfg,
		latency: NewLatencyStats(cfg.JobTTL),
		chunkCfg: chunker.Config{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			MinChunk:     chunker.DefaultConfig().MinChunk,
		},
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	var workers sync.WaitGroup
	for range o.cfg.WorkerCount {
		workers.Add(1)
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			defer workers.Done()
			w := NewWorker(o.log, o.cfg.IncludePaths, o.cfg.TemplateDir, o.chunkCfg)
			w.Latency = o.latency
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup; it ends with the workers.
	done := make(chan struct{})
	go func() {
		workers.Wait()
		close(done)
	}()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Drain stops accepting jobs and waits for the queued ones to finish.
func (o *Orchestrator) Drain() {
	o.closeQueue()
	o.wg.Wait()
}

// Stop cancels in-flight work and shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.closeQueue()
	o.wg.Wait()
}

func (o *Orchestrator) closeQueue() {
	o.closeOnce.Do(func() { close(o.queue) })
}

// Submit queues a new job for processing. It must not be called after
// Drain or Stop.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Formats returns the default output formats for new jobs.
func (o *Orchestrator) Formats() []string {
	return o.cfg.Formats
}

// Latency summarizes how long recent jobs took to complete.
func (o *Orchestrator) Latency() LatencySnapshot {
	return o.latency.Snapshot()
}
