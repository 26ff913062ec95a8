package validate

import (
	"fmt"
	"strings"
	"time"
)

// Report is the audit trail of one validation pass. Every rejected item
// increments exactly one reason counter, so
// TotalInput - TotalOutput == sum of the reason counters.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalInput  int `json:"total_input"`
	TotalOutput int `json:"total_output"`

	MissingFields  int `json:"missing_fields"`
	InvalidLength  int `json:"invalid_length"`
	InvalidOptions int `json:"invalid_options"`
	InvalidAnswer  int `json:"invalid_answer"`
	ContentIssues  int `json:"content_issues"`
	Duplicates     int `json:"duplicates"`

	AutoCorrected int `json:"auto_corrected"`
}

// Dropped returns the number of rejected items.
func (r Report) Dropped() int {
	return r.TotalInput - r.TotalOutput
}

// SuccessRate returns retained/input as a percentage.
func (r Report) SuccessRate() float64 {
	if r.TotalInput == 0 {
		return 0
	}
	return float64(r.TotalOutput) / float64(r.TotalInput) * 100
}

// Render produces the human-readable validation report. It is a pure
// function of the report fields, so the same stats always regenerate the
// same text without re-running validation.
func (r Report) Render() string {
	var sb strings.Builder
	line := strings.Repeat("=", 70)

	fmt.Fprintf(&sb, "%s\nQUESTION VALIDATION REPORT\n%s\n", line, line)
	fmt.Fprintf(&sb, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&sb, "SUMMARY:\n")
	fmt.Fprintf(&sb, "  Total input questions: %d\n", r.TotalInput)
	fmt.Fprintf(&sb, "  Valid questions retained: %d\n", r.TotalOutput)
	fmt.Fprintf(&sb, "  Questions dropped: %d\n", r.Dropped())
	fmt.Fprintf(&sb, "  Success rate: %.1f%%\n\n", r.SuccessRate())

	fmt.Fprintf(&sb, "DROPPED QUESTIONS BREAKDOWN:\n")
	fmt.Fprintf(&sb, "  - Missing required fields: %d\n", r.MissingFields)
	fmt.Fprintf(&sb, "  - Invalid question length: %d\n", r.InvalidLength)
	fmt.Fprintf(&sb, "  - Invalid options structure: %d\n", r.InvalidOptions)
	fmt.Fprintf(&sb, "  - Invalid/unresolvable answer: %d\n", r.InvalidAnswer)
	fmt.Fprintf(&sb, "  - Content/formatting issues: %d\n", r.ContentIssues)
	fmt.Fprintf(&sb, "  - Duplicate questions: %d\n\n", r.Duplicates)

	fmt.Fprintf(&sb, "AUTO-CORRECTIONS:\n")
	fmt.Fprintf(&sb, "  - Answers auto-corrected: %d\n", r.AutoCorrected)
	fmt.Fprintf(&sb, "%s\n", line)

	return sb.String()
}
