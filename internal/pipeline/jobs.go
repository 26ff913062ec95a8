package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of a generation run.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusChunking   JobStatus = "chunking"
	StatusGenerating JobStatus = "generating"
	StatusValidating JobStatus = "validating"
	StatusScoring    JobStatus = "scoring"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Job tracks the state of a single generation run.
type Job struct {
	mu sync.Mutex

	ID    string `json:"run_id"`
	Topic string `json:"topic"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Run parameters, resolved at submission time.
	Total        int `json:"total_items"`
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// Document ids this run draws from; empty means all uploaded.
	DocumentIDs []string `json:"document_ids,omitempty"`

	Progress Progress `json:"progress"`

	DatasetID string `json:"dataset_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	reportText string
	errors     []string
}

// Progress tracks run progress through the pipeline phases.
type Progress struct {
	TotalChunks    int      `json:"total_chunks"`
	ItemsGenerated int      `json:"items_generated"`
	ItemsTarget    int      `json:"items_target"`
	ItemsRetained  int      `json:"items_retained"`
	FailedChunks   int      `json:"failed_chunks"`
	AvgQuality     float64  `json:"avg_quality,omitempty"`
	Errors         []string `json:"errors"`
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetGenerated records generation progress against the target.
func (j *Job) SetGenerated(generated, target int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ItemsGenerated = generated
	j.Progress.ItemsTarget = target
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records the chunk count for the run.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// SetFailedChunks records how many chunks produced nothing.
func (j *Job) SetFailedChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FailedChunks = n
	j.UpdatedAt = time.Now()
}

// SetRetained records post-validation and scoring results.
func (j *Job) SetRetained(n int, avgQuality float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ItemsRetained = n
	j.Progress.AvgQuality = avgQuality
	j.UpdatedAt = time.Now()
}

// SetDatasetID links the persisted dataset to the run.
func (j *Job) SetDatasetID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DatasetID = id
	j.UpdatedAt = time.Now()
}

// SetReport stores the rendered validation report.
func (j *Job) SetReport(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reportText = text
	j.UpdatedAt = time.Now()
}

// Report returns the rendered validation report, empty until validation ran.
func (j *Job) Report() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.reportText
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"run_id"`
	Topic     string    `json:"topic"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Total     int       `json:"total_items"`
	DatasetID string    `json:"dataset_id,omitempty"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Topic:     j.Topic,
		Status:    j.Status,
		Phase:     j.Phase,
		Total:     j.Total,
		DatasetID: j.DatasetID,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Latest returns the most recently updated job, or nil when empty.
func (s *JobStore) Latest() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *Job
	var latestAt time.Time
	for _, job := range s.jobs {
		at := job.updatedAt()
		if latest == nil || at.After(latestAt) {
			latest = job
			latestAt = at
		}
	}
	return latest
}

// Cleanup removes expired jobs. Job timestamps are read under each
// job's own lock since workers may still be mutating them.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
