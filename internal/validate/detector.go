package validate

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultSimilarityThreshold is the character-sequence similarity at or
// above which two normalized question texts count as near-duplicates.
const DefaultSimilarityThreshold = 0.85

var (
	punctRe = regexp.MustCompile(`[^\w\s]`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, strips punctuation and collapses whitespace
// so that casing/punctuation variants compare equal.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = punctRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Similarity returns the longest-matching-blocks ratio of two strings,
// compared character by character, in [0,1].
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// Detector flags near-duplicate question texts within one validation
// pass. It is stateful: every accepted text grows the corpus, so each new
// item is compared against everything seen so far. That scan is O(n) per
// item, which is fine for runs of hundreds to a few thousand questions;
// much larger corpora would need an indexed structure (e.g. n-gram
// shingles) that keeps the same accept/reject behavior. Not safe for
// concurrent use — duplicate decisions are order-dependent.
type Detector struct {
	threshold float64
	seen      map[string]struct{}
	corpus    []string
}

// NewDetector creates a detector with the given similarity threshold;
// values outside (0,1] fall back to the default.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Detector{
		threshold: threshold,
		seen:      make(map[string]struct{}),
	}
}

// IsDuplicate reports whether text is an exact or near-duplicate of a
// previously checked text. Non-duplicates are added to the corpus.
func (d *Detector) IsDuplicate(text string) bool {
	norm := Normalize(text)
	if _, ok := d.seen[norm]; ok {
		return true
	}
	for _, prev := range d.corpus {
		if Similarity(norm, prev) >= d.threshold {
			return true
		}
	}
	d.seen[norm] = struct{}{}
	d.corpus = append(d.corpus, norm)
	return false
}

// Reset clears the corpus.
func (d *Detector) Reset() {
	d.seen = make(map[string]struct{})
	d.corpus = d.corpus[:0]
}

// Size returns the number of distinct texts in the corpus.
func (d *Detector) Size() int {
	return len(d.corpus)
}
