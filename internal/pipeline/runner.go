package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mbella-dev/questforge/internal/config"
	"github.com/mbella-dev/questforge/internal/dataset"
	"github.com/mbella-dev/questforge/internal/generate"
)

// Runner manages the generation run queue and its worker pool.
type Runner struct {
	jobs   *JobStore
	docs   *DocStore
	queue  chan *Job
	client generate.Client
	store  *dataset.Store
	log    *slog.Logger
	cfg    config.Config
	policy generate.Policy

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates the run pipeline. store may be nil to skip SQLite
// persistence.
func NewRunner(cfg config.Config, client generate.Client, store *dataset.Store, log *slog.Logger) *Runner {
	return &Runner{
		jobs:   NewJobStore(cfg.JobTTL),
		docs:   NewDocStore(),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		client: client,
		store:  store,
		log:    log,
		cfg:    cfg,
		policy: generate.Policy{
			MaxAttempts: cfg.RetryAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		},
	}
}

// Start launches worker goroutines and the job store janitor.
func (r *Runner) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.cfg.WorkerCount; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			w := NewWorker(r.docs, r.client, r.policy, r.cfg.Concurrency, r.cfg.DuplicateThreshold, r.store, r.cfg.OutputDir, r.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-r.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				r.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	close(r.queue)
	r.wg.Wait()
}

// Submit queues a new run for processing.
func (r *Runner) Submit(job *Job) error {
	r.jobs.Put(job)
	select {
	case r.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("run queue is full (%d)", r.cfg.MaxQueueSize)
	}
}

// GetJob returns a run by ID.
func (r *Runner) GetJob(id string) *Job {
	return r.jobs.Get(id)
}

// LatestJob returns the most recently updated run.
func (r *Runner) LatestJob() *Job {
	return r.jobs.Latest()
}

// Documents returns the uploaded document registry.
func (r *Runner) Documents() *DocStore {
	return r.docs
}

// Datasets returns the dataset store, nil when persistence is disabled.
func (r *Runner) Datasets() *dataset.Store {
	return r.store
}

// QueueDepth returns the current queue depth.
func (r *Runner) QueueDepth() int {
	return len(r.queue)
}
