package analytics

import (
	"math"

	"github.com/mbella-dev/questforge/internal/question"
)

// QualityDistribution buckets items by quality band.
type QualityDistribution struct {
	Excellent int `json:"excellent"` // >= 0.9
	Good      int `json:"good"`      // [0.7, 0.9)
	Fair      int `json:"fair"`      // [0.5, 0.7)
	Poor      int `json:"poor"`      // < 0.5
}

// Summary is the aggregate view of one dataset.
type Summary struct {
	TotalQuestions  int                 `json:"total_questions"`
	AvgQualityScore float64             `json:"avg_quality_score"`
	Categories      map[string]int      `json:"categories"`
	Difficulty      map[string]int      `json:"difficulty"`
	Quality         QualityDistribution `json:"quality_distribution"`
}

// Summarize computes per-category and per-difficulty counts, the average
// quality score, and the quality-band distribution. Unscored items count
// as 0.0, the same as unparseable scores in exported data.
func Summarize(items []question.Item) Summary {
	s := Summary{
		TotalQuestions: len(items),
		Categories:     map[string]int{},
		Difficulty:     map[string]int{},
	}
	if len(items) == 0 {
		return s
	}

	var total float64
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "Unknown"
		}
		s.Categories[cat]++

		diff := it.Difficulty
		if diff == "" {
			diff = "Unknown"
		}
		s.Difficulty[diff]++

		var score float64
		if it.QualityScore != nil {
			score = *it.QualityScore
		}
		total += score
		switch {
		case score >= 0.9:
			s.Quality.Excellent++
		case score >= 0.7:
			s.Quality.Good++
		case score >= 0.5:
			s.Quality.Fair++
		default:
			s.Quality.Poor++
		}
	}

	s.AvgQualityScore = math.Round(total/float64(len(items))*1000) / 1000
	return s
}
