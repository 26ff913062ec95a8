package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbella-dev/questforge/internal/config"
	"github.com/mbella-dev/questforge/internal/generate"
	"github.com/mbella-dev/questforge/internal/pipeline"
)

// Server is the HTTP API server for questforge.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	llm    *generate.OpenAIClient
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil when
// the stats endpoint is not needed (tests use a stub client).
func NewServer(runner *pipeline.Runner, llm *generate.OpenAIClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner: runner,
		llm:    llm,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleUploadDocument)
		r.Get("/api/documents", s.handleListDocuments)

		r.Post("/api/runs", s.handleStartRun)
		r.Get("/api/runs/{runID}", s.handleRunStatus)

		r.Get("/api/questions", s.handleQuestions)
		r.Get("/api/summary", s.handleSummary)
		r.Get("/api/report", s.handleReport)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
