package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mbella-dev/questforge/internal/pipeline"
)

type startRunRequest struct {
	Topic        string   `json:"topic"`
	TotalItems   int      `json:"total_items"`
	ChunkSize    int      `json:"chunk_size"`
	ChunkOverlap int      `json:"chunk_overlap"`
	DocumentIDs  []string `json:"document_ids"`
}

// handleStartRun queues a new generation run. The item target is clamped
// to the configured range rather than rejected.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		jsonError(w, "topic is required", http.StatusBadRequest)
		return
	}
	if s.runner.Documents().Len() == 0 {
		jsonError(w, "no documents uploaded", http.StatusBadRequest)
		return
	}

	total := req.TotalItems
	if total == 0 {
		total = s.cfg.TotalMin
	}
	if total < s.cfg.TotalMin {
		total = s.cfg.TotalMin
	}
	if total > s.cfg.TotalMax {
		total = s.cfg.TotalMax
	}

	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.cfg.DefaultChunkSize
	}
	overlap := req.ChunkOverlap
	if overlap <= 0 {
		overlap = s.cfg.DefaultChunkOverlap
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:           uuid.NewString(),
		Topic:        req.Topic,
		Status:       pipeline.StatusQueued,
		Phase:        "queued",
		Total:        total,
		ChunkSize:    chunkSize,
		ChunkOverlap: overlap,
		DocumentIDs:  req.DocumentIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.runner.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"run_id":      job.ID,
		"topic":       job.Topic,
		"total_items": job.Total,
		"status":      job.Status,
		"poll_url":    fmt.Sprintf("/api/runs/%s", job.ID),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	job := s.runner.GetJob(runID)
	if job == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
