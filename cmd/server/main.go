package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbella-dev/questforge/internal/api"
	"github.com/mbella-dev/questforge/internal/config"
	"github.com/mbella-dev/questforge/internal/dataset"
	"github.com/mbella-dev/questforge/internal/generate"
	"github.com/mbella-dev/questforge/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	llm := generate.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	store, err := dataset.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open dataset store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(cfg, llm, store, log)
	runner.Start(ctx)

	srv := api.NewServer(runner, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		runner.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		store.Close()
	}()

	log.Info("starting questforge", "port", cfg.Port, "model", cfg.OpenAIModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
