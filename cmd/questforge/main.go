package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mbella-dev/questforge/internal/analytics"
	"github.com/mbella-dev/questforge/internal/chunker"
	"github.com/mbella-dev/questforge/internal/config"
	"github.com/mbella-dev/questforge/internal/dataset"
	"github.com/mbella-dev/questforge/internal/generate"
	"github.com/mbella-dev/questforge/internal/parser"
	"github.com/mbella-dev/questforge/internal/score"
	"github.com/mbella-dev/questforge/internal/validate"
)

func main() {
	inputDir := flag.String("input-dir", "books", "directory containing source documents")
	output := flag.String("output", "output/questions.json", "path for the generated dataset")
	topic := flag.String("topic", "Cameroon", "topic to focus question generation on")
	total := flag.Int("total", 100, "total number of questions to generate (100-10000)")
	chunkSize := flag.Int("chunk-size", 1000, "words per chunk")
	overlap := flag.Int("overlap", 200, "words of overlap between chunks")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := run(log, *inputDir, *output, *topic, *total, *chunkSize, *overlap); err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, inputDir, output, topic string, total, chunkSize, overlap int) error {
	cfg := config.Load()
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if total < cfg.TotalMin {
		total = cfg.TotalMin
	}
	if total > cfg.TotalMax {
		total = cfg.TotalMax
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting run",
		"input_dir", inputDir,
		"output", output,
		"topic", topic,
		"total", total,
		"chunk_size", chunkSize,
		"overlap", overlap,
	)

	corpus, skipped, err := parser.ParseDir(inputDir)
	if err != nil {
		return err
	}
	for _, serr := range skipped {
		log.Warn("skipped document", "error", serr)
	}
	log.Info("parsed documents", "words", corpus.WordCount())

	chunks := chunker.Split(corpus.Text(), chunker.Config{ChunkSize: chunkSize, Overlap: overlap})
	if len(chunks) == 0 {
		return fmt.Errorf("no text to chunk in %s", inputDir)
	}
	info := chunker.Info(chunks)
	log.Info("chunked corpus", "chunks", info.TotalChunks, "avg_words", info.AvgWordsPerChunk)

	client := generate.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	policy := generate.Policy{
		MaxAttempts: cfg.RetryAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}
	orch := generate.NewOrchestrator(client, policy, cfg.Concurrency, log)
	orch.OnProgress = func(generated, target int) {
		log.Info("progress", "generated", generated, "target", target)
	}

	raw, stats, err := orch.Run(ctx, chunks, topic, total)
	if err != nil {
		return err
	}
	if stats.Shortfall() > 0 {
		log.Warn("target not fully met", "shortfall", stats.Shortfall())
	}

	validator := validate.New(cfg.DuplicateThreshold)
	kept, report := validator.ValidateAll(raw)
	log.Info("validation complete",
		"input", report.TotalInput,
		"retained", report.TotalOutput,
		"dropped", report.Dropped(),
		"auto_corrected", report.AutoCorrected,
	)

	scored, batch := score.ScoreAll(kept, true)
	log.Info("scoring complete", "items", batch.Count, "mean", batch.Mean, "min", batch.Min, "max", batch.Max)

	if err := dataset.SaveJSON(output, scored); err != nil {
		return err
	}

	reportPath := filepath.Join(filepath.Dir(output), "validation_report.txt")
	if err := os.WriteFile(reportPath, []byte(report.Render()), 0o644); err != nil {
		return fmt.Errorf("write validation report: %w", err)
	}

	summary := analytics.Summarize(scored)
	log.Info("run complete",
		"questions", summary.TotalQuestions,
		"avg_quality", summary.AvgQualityScore,
		"output", output,
		"report", reportPath,
		"duration", stats.Duration.Round(time.Millisecond),
		"items_per_second", stats.ItemsPerSecond,
	)
	return nil
}
