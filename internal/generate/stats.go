package generate

import (
	"math"
	"sort"
	"sync"
	"time"
)

// LatencySnapshot is a point-in-time aggregate of recent call latencies.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

type latencySample struct {
	at time.Time
	ms int64
}

// CallStats tracks generation-call latencies within a rolling window.
// Safe for concurrent use.
type CallStats struct {
	mu      sync.Mutex
	samples []latencySample
	maxAge  time.Duration
}

func NewCallStats(maxAge time.Duration) *CallStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CallStats{
		samples: make([]latencySample, 0, 128),
		maxAge:  maxAge,
	}
}

func (s *CallStats) Record(ms int64) {
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.samples = append(s.samples, latencySample{at: now, ms: ms})
}

func (s *CallStats) Snapshot() LatencySnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	if len(s.samples) == 0 {
		return LatencySnapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	lo, hi := s.samples[0].ms, s.samples[0].ms
	for _, sm := range s.samples {
		values = append(values, sm.ms)
		sum += sm.ms
		lo = min(lo, sm.ms)
		hi = max(hi, sm.ms)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return LatencySnapshot{
		Count: len(values),
		MinMs: lo,
		MaxMs: hi,
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
	}
}

func (s *CallStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	w := 0
	for _, sm := range s.samples {
		if !sm.at.Before(cutoff) {
			s.samples[w] = sm
			w++
		}
	}
	s.samples = s.samples[:w]
}

// percentile linearly interpolates between the two samples straddling
// the requested rank. Input must be sorted ascending.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := pct / 100 * float64(n-1)
	if rank <= 0 {
		return float64(sorted[0])
	}
	if rank >= float64(n-1) {
		return float64(sorted[n-1])
	}
	i := int(math.Floor(rank))
	frac := rank - float64(i)
	return float64(sorted[i])*(1-frac) + float64(sorted[i+1])*frac
}
