package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mbella-dev/questforge/internal/generate"
	"github.com/mbella-dev/questforge/internal/question"
)

type stubClient struct {
	mu   sync.Mutex
	next int
	err  error
}

func (c *stubClient) Generate(_ context.Context, _, topic string, count int) ([]question.Item, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]question.Item, count)
	for i := range items {
		c.next++
		items[i] = question.Item{
			Question: fmt.Sprintf("Which event happened in year %d of %s history?", 1900+c.next, topic),
			Options: question.Options{
				"A": fmt.Sprintf("The treaty of %d", c.next),
				"B": fmt.Sprintf("The census of %d", c.next),
				"C": fmt.Sprintf("The election of %d", c.next),
				"D": fmt.Sprintf("The festival of %d", c.next),
			},
			Answer:      "A",
			Category:    "History",
			Difficulty:  question.DifficultyMedium,
			Explanation: "The treaty marked the start of that period.",
		}
	}
	return items, nil
}

func testWorker(t *testing.T, client generate.Client) (*Worker, *DocStore, string) {
	t.Helper()
	docs := NewDocStore()
	outDir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := generate.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	w := NewWorker(docs, client, policy, 2, 0.85, nil, outDir, log)
	return w, docs, outDir
}

func newRunJob(total int) *Job {
	return &Job{
		ID:           "run-test",
		Topic:        "Cameroon",
		Status:       StatusQueued,
		Total:        total,
		ChunkSize:    1000,
		ChunkOverlap: 200,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestWorker_ProcessEndToEnd(t *testing.T) {
	w, docs, outDir := testWorker(t, &stubClient{})
	docs.Add("history.txt", []byte("The history of Cameroon spans many eras, "+
		"from early kingdoms through colonial rule to independence in 1960."))

	job := newRunJob(10)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %q, errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.TotalChunks != 1 {
		t.Errorf("expected 1 chunk, got %d", snap.Progress.TotalChunks)
	}
	if snap.Progress.ItemsGenerated != 10 {
		t.Errorf("generated = %d", snap.Progress.ItemsGenerated)
	}
	if snap.Progress.ItemsRetained == 0 {
		t.Error("expected retained items")
	}
	if job.Report() == "" {
		t.Error("expected a validation report")
	}

	out := filepath.Join(outDir, "run-run-test.json")
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected dataset file at %s: %v", out, err)
	}
}

func TestWorker_ProcessNoDocuments(t *testing.T) {
	w, _, _ := testWorker(t, &stubClient{})
	job := newRunJob(10)
	w.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
}

func TestWorker_ProcessGenerationFailure(t *testing.T) {
	w, docs, _ := testWorker(t, &stubClient{err: errors.New("api key rejected")})
	docs.Add("notes.txt", []byte("Some source material for generation."))

	job := newRunJob(10)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected recorded errors")
	}
}

func TestWorker_ProcessUnparseableDocument(t *testing.T) {
	w, docs, _ := testWorker(t, &stubClient{})
	docs.Add("binary.docx", []byte("not actually a docx archive"))

	job := newRunJob(10)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed when nothing parses", snap.Status)
	}
}
