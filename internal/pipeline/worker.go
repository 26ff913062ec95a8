package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mbella-dev/questforge/internal/chunker"
	"github.com/mbella-dev/questforge/internal/dataset"
	"github.com/mbella-dev/questforge/internal/document"
	"github.com/mbella-dev/questforge/internal/generate"
	"github.com/mbella-dev/questforge/internal/parser"
	"github.com/mbella-dev/questforge/internal/score"
	"github.com/mbella-dev/questforge/internal/validate"
)

// Worker processes a single generation run end to end.
type Worker struct {
	docs        *DocStore
	client      generate.Client
	policy      generate.Policy
	concurrency int
	threshold   float64
	store       *dataset.Store
	outputDir   string
	log         *slog.Logger
}

func NewWorker(docs *DocStore, client generate.Client, policy generate.Policy, concurrency int, threshold float64, store *dataset.Store, outputDir string, log *slog.Logger) *Worker {
	return &Worker{
		docs:        docs,
		client:      client,
		policy:      policy,
		concurrency: concurrency,
		threshold:   threshold,
		store:       store,
		outputDir:   outputDir,
		log:         log,
	}
}

// Process runs parse, chunk, generate, validate, score, and persist for
// one job. Failures before generation fail the whole run; generation-call
// failures degrade it to partial as long as some output survives.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("run_id", job.ID, "topic", job.Topic)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing documents")
	docs, err := w.docs.Select(job.DocumentIDs)
	if err != nil {
		w.fail(job, log, StatusFailed, "parsing", err.Error())
		return
	}
	if len(docs) == 0 {
		w.fail(job, log, StatusFailed, "parsing", "no documents uploaded")
		return
	}

	var parsed []*document.Document
	for _, d := range docs {
		p, err := parser.ForFile(d.Meta.Filename)
		if err != nil {
			job.AddError(fmt.Sprintf("%s: %s", d.Meta.Filename, err))
			continue
		}
		doc, err := p.Parse(bytes.NewReader(d.Data), d.Meta.Filename)
		if err != nil {
			log.Warn("parse failed, skipping document", "filename", d.Meta.Filename, "error", err)
			job.AddError(fmt.Sprintf("parse %s: %s", d.Meta.Filename, err))
			continue
		}
		parsed = append(parsed, doc)
	}
	if len(parsed) == 0 {
		w.fail(job, log, StatusFailed, "parsing", "no documents could be parsed")
		return
	}
	corpus := document.Merge(job.Topic, parsed...)
	log.Info("parsed documents", "documents", len(parsed), "words", corpus.WordCount())

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "splitting into chunks")
	chunks := chunker.Split(corpus.Text(), chunker.Config{
		ChunkSize: job.ChunkSize,
		Overlap:   job.ChunkOverlap,
	})
	job.SetTotalChunks(len(chunks))
	if len(chunks) == 0 {
		w.fail(job, log, StatusFailed, "chunking", "no text to chunk")
		return
	}
	log.Info("chunked corpus", "chunks", len(chunks))

	// Phase 3: Generate
	job.SetStatus(StatusGenerating, "generating questions")
	orch := generate.NewOrchestrator(w.client, w.policy, w.concurrency, log)
	orch.OnProgress = job.SetGenerated

	raw, stats, err := orch.Run(ctx, chunks, job.Topic, job.Total)
	if err != nil {
		w.fail(job, log, StatusFailed, "generating", err.Error())
		return
	}
	job.SetGenerated(stats.Generated, job.Total)
	job.SetFailedChunks(len(stats.FailedChunks))
	if len(raw) == 0 {
		w.fail(job, log, StatusFailed, "generating", "no items generated")
		return
	}

	// Phase 4: Validate
	job.SetStatus(StatusValidating, "validating questions")
	validator := validate.New(w.threshold)
	kept, report := validator.ValidateAll(raw)
	job.SetReport(report.Render())
	log.Info("validation complete",
		"input", report.TotalInput,
		"retained", report.TotalOutput,
		"dropped", report.Dropped(),
		"auto_corrected", report.AutoCorrected,
	)
	if len(kept) == 0 {
		w.fail(job, log, StatusFailed, "validating", "no items survived validation")
		return
	}

	// Phase 5: Score
	job.SetStatus(StatusScoring, "scoring questions")
	scored, batch := score.ScoreAll(kept, true)
	job.SetRetained(len(scored), batch.Mean)
	log.Info("scoring complete", "items", batch.Count, "mean", batch.Mean)

	for i := range scored {
		if scored[i].ID == "" {
			scored[i].ID = uuid.NewString()
		}
	}

	// Phase 6: Persist
	hadErrors := len(stats.FailedChunks) > 0
	outPath := filepath.Join(w.outputDir, fmt.Sprintf("run-%s.json", job.ID))
	if err := dataset.SaveJSON(outPath, scored); err != nil {
		log.Error("dataset write failed", "path", outPath, "error", err)
		job.AddError(fmt.Sprintf("save json: %s", err))
		hadErrors = true
	}
	if w.store != nil {
		meta, err := w.store.SaveDataset(job.Topic, outPath, scored)
		if err != nil {
			log.Error("dataset store failed", "error", err)
			job.AddError(fmt.Sprintf("save dataset: %s", err))
			hadErrors = true
		} else {
			job.SetDatasetID(meta.ID)
		}
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("run finished",
		"status", job.Snapshot().Status,
		"generated", stats.Generated,
		"retained", len(scored),
		"failed_chunks", len(stats.FailedChunks),
	)
}

func (w *Worker) fail(job *Job, log *slog.Logger, status JobStatus, phase, msg string) {
	log.Error("run failed", "phase", phase, "error", msg)
	job.AddError(msg)
	job.SetStatus(status, phase)
}
