package document

import (
	"regexp"
	"strings"
)

// Document is the flat extracted form of one source file: an ordered list
// of sections carrying their heading context. Generation only needs the
// running text; headings and pages are kept for provenance.
type Document struct {
	Title    string    `json:"title"`
	Source   string    `json:"source"`
	Sections []Section `json:"sections"`
}

// Section is one contiguous block of extracted text.
type Section struct {
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text"`
	Page    int    `json:"page,omitempty"`
}

// Text joins all section text in document order, separated by blank lines.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// WordCount counts whitespace-separated words across all sections.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Text()))
}

// Merge concatenates several documents into one corpus document, keeping
// per-source headings so the origin of each stretch stays visible.
func Merge(title string, docs ...*Document) *Document {
	merged := &Document{Title: title}
	for _, d := range docs {
		if d == nil {
			continue
		}
		merged.Sections = append(merged.Sections, d.Sections...)
	}
	return merged
}

var (
	blankRunRe   = regexp.MustCompile(`\n\s*\n`)
	spaceRunRe   = regexp.MustCompile(` +`)
	pageNumberRe = regexp.MustCompile(`(?m)^\d+\s*$`)
	pageLabelRe  = regexp.MustCompile(`(?i)Page \d+`)
)

// Clean normalizes text extracted from binary formats: collapses blank-line
// runs and repeated spaces, drops bare page-number lines and "Page N"
// markers, and strips NUL bytes that some extractors leak.
func Clean(text string) string {
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = pageNumberRe.ReplaceAllString(text, "")
	text = pageLabelRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
