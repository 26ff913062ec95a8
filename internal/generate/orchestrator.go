package generate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mbella-dev/questforge/internal/chunker"
	"github.com/mbella-dev/questforge/internal/question"
)

// Per-chunk request bounds: asking for several questions per call keeps
// the call count far below the one-item-per-call baseline.
const (
	minPerChunk = 5
	maxPerChunk = 10

	// Extra chunks scheduled beyond the estimated need, as headroom for
	// failed or under-filled calls.
	chunkSafetyMargin = 10
)

// RunStats aggregates the counters of one generation run.
type RunStats struct {
	Requested      int           `json:"requested"`
	Generated      int           `json:"generated"`
	ChunksSelected int           `json:"chunks_selected"`
	ChunksTotal    int           `json:"chunks_total"`
	CallsAttempted int           `json:"calls_attempted"`
	CallsSucceeded int           `json:"calls_succeeded"`
	FailedChunks   []int         `json:"failed_chunks"`
	Duration       time.Duration `json:"duration_ns"`
	ItemsPerSecond float64       `json:"items_per_second"`
}

// Shortfall returns how many requested items the run failed to produce.
func (s RunStats) Shortfall() int {
	if s.Generated >= s.Requested {
		return 0
	}
	return s.Requested - s.Generated
}

// Orchestrator drives concurrent generation calls over a chunk list
// until a target item count is reached. Each call is retried per the
// policy; chunks whose calls exhaust their retries are recorded as
// failed and contribute nothing. A fresh stats value is produced per
// run, so one Orchestrator can serve many runs sequentially.
type Orchestrator struct {
	client     Client
	policy     Policy
	limit      int
	batchDelay time.Duration
	log        *slog.Logger

	// OnProgress, when set, is called after each completed batch with the
	// accumulated and target item counts.
	OnProgress func(generated, target int)
}

func NewOrchestrator(client Client, policy Policy, limit int, log *slog.Logger) *Orchestrator {
	if limit <= 0 {
		limit = 5
	}
	return &Orchestrator{
		client:     client,
		policy:     policy,
		limit:      limit,
		batchDelay: 100 * time.Millisecond,
		log:        log,
	}
}

type callTask struct {
	chunk chunker.Chunk
	count int
}

// Run generates approximately total items about topic from the given
// chunks and truncates to exactly total on overshoot. An empty chunk
// list or non-positive target is a configuration error; everything else
// is absorbed into the returned stats.
//
// Items from concurrent calls land in completion order, and once the
// target is reached remaining batches are skipped, so the item set of an
// overshooting run can vary between invocations. Calls that succeed with
// fewer items than requested are accepted as-is; the shortfall is
// visible in the stats rather than re-requested.
func (o *Orchestrator) Run(ctx context.Context, chunks []chunker.Chunk, topic string, total int) ([]question.Item, RunStats, error) {
	stats := RunStats{
		Requested:   total,
		ChunksTotal: len(chunks),
	}
	if len(chunks) == 0 {
		return nil, stats, errors.New("no chunks to process")
	}
	if total <= 0 {
		return nil, stats, errors.New("target item count must be positive")
	}

	start := time.Now()

	perChunk := clamp(total/max(1, len(chunks)/5), minPerChunk, maxPerChunk)
	needed := min(len(chunks), total/perChunk+chunkSafetyMargin)
	stats.ChunksSelected = needed

	tasks := make([]callTask, 0, needed)
	for _, c := range chunks[:needed] {
		tasks = append(tasks, callTask{chunk: c, count: min(perChunk, total)})
	}

	o.log.Info("generation run starting",
		"target", total,
		"chunks_selected", needed,
		"chunks_total", len(chunks),
		"per_chunk", perChunk,
		"concurrency", o.limit,
		"topic", topic,
	)

	var (
		mu    sync.Mutex
		items []question.Item
	)
	sem := make(chan struct{}, o.limit)
	batchSize := o.limit * 2

	for batchStart := 0; batchStart < len(tasks); batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, len(tasks))

		var wg sync.WaitGroup
		for _, t := range tasks[batchStart:batchEnd] {
			wg.Add(1)
			go func(t callTask) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				mu.Lock()
				stats.CallsAttempted++
				mu.Unlock()

				var got []question.Item
				err := o.policy.Do(ctx, func() error {
					res, callErr := o.client.Generate(ctx, t.chunk.Text, topic, t.count)
					if callErr != nil {
						return callErr
					}
					got = res
					return nil
				})

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					stats.FailedChunks = append(stats.FailedChunks, t.chunk.Index)
					o.log.Error("chunk generation failed",
						"chunk", t.chunk.Index,
						"category", errorCategory(err),
						"error", err,
						"failed_at", time.Now().Format(time.RFC3339),
					)
					return
				}
				stats.CallsSucceeded++
				items = append(items, got...)
			}(t)
		}
		wg.Wait()

		mu.Lock()
		have := len(items)
		mu.Unlock()

		if o.OnProgress != nil {
			o.OnProgress(min(have, total), total)
		}
		o.log.Debug("batch complete", "generated", have, "target", total)

		if have >= total {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if batchEnd < len(tasks) {
			select {
			case <-time.After(o.batchDelay):
			case <-ctx.Done():
			}
		}
	}

	if len(items) > total {
		items = items[:total]
	}
	sort.Ints(stats.FailedChunks)

	stats.Generated = len(items)
	stats.Duration = time.Since(start)
	if secs := stats.Duration.Seconds(); secs > 0 {
		stats.ItemsPerSecond = float64(len(items)) / secs
	}

	o.log.Info("generation run complete",
		"generated", stats.Generated,
		"target", total,
		"calls_attempted", stats.CallsAttempted,
		"calls_succeeded", stats.CallsSucceeded,
		"failed_chunks", len(stats.FailedChunks),
		"duration", stats.Duration.Round(time.Millisecond),
	)

	return items, stats, nil
}

func errorCategory(err error) string {
	if errors.Is(err, ErrNoItems) {
		return "parse_error"
	}
	var r *RetryableError
	if errors.As(err, &r) {
		return "rate_limit_or_server_error"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "api_error"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
