package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/mbella-dev/questforge/internal/analytics"
	"github.com/mbella-dev/questforge/internal/dataset"
	"github.com/mbella-dev/questforge/internal/pipeline"
	"github.com/mbella-dev/questforge/internal/question"
)

// resolveJob picks the run a data endpoint refers to: the run_id query
// parameter when present, otherwise the most recent run.
func (s *Server) resolveJob(r *http.Request) *pipeline.Job {
	if id := r.URL.Query().Get("run_id"); id != "" {
		return s.runner.GetJob(id)
	}
	return s.runner.LatestJob()
}

// loadItems fetches the dataset of a run, preferring SQLite when the run
// was persisted there and falling back to the JSON file.
func (s *Server) loadItems(job *pipeline.Job) ([]question.Item, error) {
	snap := job.Snapshot()
	if store := s.runner.Datasets(); store != nil && snap.DatasetID != "" {
		return store.LoadDataset(snap.DatasetID)
	}
	path := filepath.Join(s.cfg.OutputDir, "run-"+snap.ID+".json")
	return dataset.LoadJSON(path)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	job := s.resolveJob(r)
	if job == nil {
		jsonError(w, "no runs yet", http.StatusNotFound)
		return
	}
	items, err := s.loadItems(job)
	if err != nil {
		jsonError(w, "dataset not available: "+err.Error(), http.StatusNotFound)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	total := len(items)
	if limit < total {
		items = items[:limit]
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"total":     total,
		"limit":     limit,
		"questions": items,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	job := s.resolveJob(r)
	if job == nil {
		jsonError(w, "no runs yet", http.StatusNotFound)
		return
	}
	items, err := s.loadItems(job)
	if err != nil {
		jsonError(w, "dataset not available: "+err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analytics.Summarize(items))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	job := s.resolveJob(r)
	if job == nil {
		jsonError(w, "no runs yet", http.StatusNotFound)
		return
	}
	report := job.Report()
	if report == "" {
		jsonError(w, "validation report not available yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(report))
}
