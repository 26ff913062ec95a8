// Package score computes deterministic quality scores for validated
// questions. Scoring is pure and touches no shared state, so items can
// be scored in parallel.
package score

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mbella-dev/questforge/internal/question"
)

// Each criterion contributes equally to the composite score.
const criterionWeight = 0.2

// Score computes the composite quality score in [0,1] for an item,
// rounded to three decimals, along with the per-criterion breakdown.
// The item itself is not modified.
func Score(item question.Item) (float64, question.Breakdown) {
	b := question.Breakdown{
		Clarity:     scoreClarity(item.Question),
		Options:     scoreOptions(item.Options),
		Answer:      scoreAnswer(item.Answer, item.Options),
		Explanation: scoreExplanation(item.Explanation),
		Metadata:    scoreMetadata(item.Category, item.Difficulty),
	}
	total := criterionWeight * (b.Clarity + b.Options + b.Answer + b.Explanation + b.Metadata)
	return round3(total), b
}

// scoreClarity favors question texts of 30-200 characters. Shorter texts
// scale linearly from zero; longer ones lose a full point per 100 excess
// characters. Ending with a question mark earns a small bonus.
func scoreClarity(q string) float64 {
	n := utf8.RuneCountInString(q)
	var s float64
	switch {
	case n >= 30 && n <= 200:
		s = 1.0
	case n < 30:
		s = float64(n) / 30.0
	default:
		penalty := math.Min(float64(n-200)/100.0, 1.0)
		s = math.Max(0, 1.0-penalty)
	}
	if strings.HasSuffix(strings.TrimSpace(q), "?") {
		s = math.Min(1.0, s+0.1)
	}
	return s
}

// scoreOptions rewards four distinct option values and similar option
// lengths. Distinctness is worth half the point (with partial credit),
// length balance the other half, stepped by the standard deviation of
// option text lengths.
func scoreOptions(opts question.Options) float64 {
	if len(opts) != 4 {
		return 0
	}

	var s float64
	distinct := make(map[string]struct{}, 4)
	lengths := make([]float64, 0, 4)
	for _, v := range opts.Values() {
		distinct[v] = struct{}{}
		lengths = append(lengths, float64(utf8.RuneCountInString(v)))
	}
	if len(distinct) == 4 {
		s += 0.5
	} else {
		s += float64(len(distinct)) / 8.0
	}

	var sum float64
	for _, l := range lengths {
		sum += l
	}
	mean := sum / float64(len(lengths))
	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	stddev := math.Sqrt(variance / float64(len(lengths)))
	switch {
	case stddev < 10:
		s += 0.5
	case stddev < 20:
		s += 0.3
	case stddev < 30:
		s += 0.1
	}
	return math.Min(1.0, s)
}

// scoreAnswer re-checks answer validity independently of the validator.
func scoreAnswer(answer string, opts question.Options) float64 {
	switch answer {
	case "A", "B", "C", "D":
		if _, ok := opts[answer]; ok {
			return 1.0
		}
	}
	return 0
}

func scoreExplanation(explanation string) float64 {
	trimmed := strings.TrimSpace(explanation)
	if trimmed == "" {
		return 0
	}
	n := utf8.RuneCountInString(trimmed)
	var s float64
	switch {
	case n >= 50:
		s = 1.0
	case n >= 15:
		s = 0.8
	default:
		s = float64(n) / 15.0 * 0.5
	}
	if strings.HasSuffix(trimmed, ".") {
		s = math.Min(1.0, s+0.1)
	}
	return s
}

func scoreMetadata(category, difficulty string) float64 {
	var s float64
	if c := strings.TrimSpace(category); c != "" && utf8.RuneCountInString(c) >= 3 {
		s += 0.5
	}
	switch difficulty {
	case question.DifficultyEasy, question.DifficultyMedium, question.DifficultyHard:
		s += 0.5
	}
	return s
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// BatchStats aggregates scores across one batch.
type BatchStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`

	// Counts per quality band.
	Excellent int `json:"excellent"` // [0.9, 1.0]
	Good      int `json:"good"`      // [0.7, 0.9)
	Fair      int `json:"fair"`      // [0.5, 0.7)
	Poor      int `json:"poor"`      // [0.0, 0.5)
}

// ScoreAll scores every item, optionally sorts the result by descending
// quality (stable, so input order breaks ties), and reports aggregate
// statistics. The input slice is left untouched.
func ScoreAll(items []question.Item, sortByQuality bool) ([]question.Item, BatchStats) {
	scored := make([]question.Item, len(items))
	copy(scored, items)

	stats := BatchStats{Count: len(scored)}
	if len(scored) == 0 {
		return scored, stats
	}

	stats.Min = math.Inf(1)
	var sum float64
	for i := range scored {
		s, breakdown := Score(scored[i])
		scored[i].QualityScore = &s
		bd := breakdown
		scored[i].ScoreBreakdown = &bd

		sum += s
		stats.Min = math.Min(stats.Min, s)
		stats.Max = math.Max(stats.Max, s)
		switch {
		case s >= 0.9:
			stats.Excellent++
		case s >= 0.7:
			stats.Good++
		case s >= 0.5:
			stats.Fair++
		default:
			stats.Poor++
		}
	}
	stats.Mean = round3(sum / float64(len(scored)))

	if sortByQuality {
		sort.SliceStable(scored, func(i, j int) bool {
			return *scored[i].QualityScore > *scored[j].QualityScore
		})
	}
	return scored, stats
}
