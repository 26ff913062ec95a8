package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mbella-dev/questforge/internal/question"
)

// Reason identifies why an item was rejected.
type Reason string

const (
	ReasonMissingFields  Reason = "missing_fields"
	ReasonInvalidLength  Reason = "invalid_length"
	ReasonInvalidOptions Reason = "invalid_options"
	ReasonInvalidAnswer  Reason = "invalid_answer"
	ReasonContentIssue   Reason = "content_issue"
	ReasonDuplicate      Reason = "duplicate"
)

// Question text length bounds in characters.
const (
	minQuestionLen = 20
	maxQuestionLen = 300
)

// answerMatchCutoff is the similarity needed to resolve a free-text
// answer to an option value.
const answerMatchCutoff = 0.8

var (
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
)

// difficultySynonyms maps lowercased difficulty labels to the canonical
// vocabulary. Unrecognized labels default to Medium.
var difficultySynonyms = map[string]string{
	"easy":        question.DifficultyEasy,
	"simple":      question.DifficultyEasy,
	"basic":       question.DifficultyEasy,
	"medium":      question.DifficultyMedium,
	"intermediate": question.DifficultyMedium,
	"hard":        question.DifficultyHard,
	"difficult":   question.DifficultyHard,
	"advanced":    question.DifficultyHard,
	"challenging": question.DifficultyHard,
}

// Validator runs the sequential schema, content and duplicate checks over
// generated items and normalizes the survivors. One Validator instance
// covers one validation pass; results are order-dependent because the
// duplicate corpus grows as items are accepted.
type Validator struct {
	detector *Detector
	report   Report
}

// New creates a validator with the given duplicate-similarity threshold.
func New(threshold float64) *Validator {
	return &Validator{detector: NewDetector(threshold)}
}

// Validate runs one item through every check. It returns the cleaned item
// on success, or the rejection reason. The input is not mutated.
func (v *Validator) Validate(item question.Item) (question.Item, Reason, bool) {
	if item.Question == "" || len(item.Options) == 0 || item.Answer == "" {
		v.report.MissingFields++
		return item, ReasonMissingFields, false
	}

	if n := utf8.RuneCountInString(item.Question); n < minQuestionLen || n > maxQuestionLen {
		v.report.InvalidLength++
		return item, ReasonInvalidLength, false
	}

	if !v.checkOptions(item.Options) {
		v.report.InvalidOptions++
		return item, ReasonInvalidOptions, false
	}

	answer, ok := v.resolveAnswer(item.Answer, item.Options)
	if !ok {
		v.report.InvalidAnswer++
		return item, ReasonInvalidAnswer, false
	}
	item.Answer = answer

	if !checkContent(item.Question) {
		v.report.ContentIssues++
		return item, ReasonContentIssue, false
	}

	if v.detector.IsDuplicate(item.Question) {
		v.report.Duplicates++
		return item, ReasonDuplicate, false
	}

	item.Category = titleCase(strings.TrimSpace(item.Category))
	item.Difficulty = normalizeDifficulty(item.Difficulty)

	return item, "", true
}

// ValidateAll validates a batch in order and returns the retained items
// plus the pass report. Detector and counters are reset first, so the
// same input always produces the same decisions and the same report.
func (v *Validator) ValidateAll(items []question.Item) ([]question.Item, Report) {
	v.detector.Reset()
	v.report = Report{
		GeneratedAt: time.Now(),
		TotalInput:  len(items),
	}

	valid := make([]question.Item, 0, len(items))
	for _, item := range items {
		cleaned, _, ok := v.Validate(item)
		if ok {
			valid = append(valid, cleaned)
		}
	}
	v.report.TotalOutput = len(valid)
	return valid, v.report
}

// Report returns the counters from the most recent pass.
func (v *Validator) Report() Report {
	return v.report
}

// checkOptions requires exactly the keys A-D, all non-empty, with four
// pairwise-distinct values.
func (v *Validator) checkOptions(opts question.Options) bool {
	if !opts.HasAllKeys() {
		return false
	}
	seen := make(map[string]struct{}, 4)
	for _, k := range question.OptionKeys {
		val := opts[k]
		if strings.TrimSpace(val) == "" {
			return false
		}
		if _, dup := seen[val]; dup {
			return false
		}
		seen[val] = struct{}{}
	}
	return true
}

// resolveAnswer maps the raw answer field to an option key. A normalized
// single letter A-D is accepted directly; otherwise the answer text is
// matched against option values, exactly first, then fuzzily. Fuzzy and
// exact-text resolutions count as auto-corrections.
func (v *Validator) resolveAnswer(answer string, opts question.Options) (string, bool) {
	clean := strings.ToUpper(strings.TrimSpace(answer))
	switch clean {
	case "A", "B", "C", "D":
		return clean, true
	}

	for _, k := range question.OptionKeys {
		if strings.EqualFold(strings.TrimSpace(opts[k]), strings.TrimSpace(answer)) {
			v.report.AutoCorrected++
			return k, true
		}
	}

	bestKey := ""
	bestRatio := 0.0
	for _, k := range question.OptionKeys {
		if r := Similarity(answer, opts[k]); r > bestRatio {
			bestRatio = r
			bestKey = k
		}
	}
	if bestRatio >= answerMatchCutoff {
		v.report.AutoCorrected++
		return bestKey, true
	}
	return "", false
}

// checkContent rejects question texts with obvious formatting defects.
func checkContent(q string) bool {
	if strings.HasPrefix(q, "?") || strings.HasPrefix(q, ".") {
		return false
	}
	if digitsRe.MatchString(strings.ReplaceAll(strings.TrimSpace(q), " ", "")) {
		return false
	}
	return letterRe.MatchString(q)
}

// titleCase capitalizes the first letter of each word and lowercases the
// rest, like Python's str.title for plain ASCII categories.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if startOfWord {
				sb.WriteRune(unicode.ToUpper(r))
			} else {
				sb.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			sb.WriteRune(r)
			startOfWord = true
		}
	}
	return sb.String()
}

func normalizeDifficulty(d string) string {
	if canon, ok := difficultySynonyms[strings.ToLower(strings.TrimSpace(d))]; ok {
		return canon
	}
	return question.DifficultyMedium
}
