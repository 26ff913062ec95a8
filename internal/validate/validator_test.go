package validate

import (
	"encoding/json"
	"testing"

	"github.com/mbella-dev/questforge/internal/question"
)

func validItem() question.Item {
	return question.Item{
		Question: "What is the capital of France?",
		Options: question.Options{
			"A": "Paris", "B": "London", "C": "Berlin", "D": "Rome",
		},
		Answer:      "A",
		Category:    "geography",
		Difficulty:  "easy",
		Explanation: "Paris has been the French capital since 508 AD.",
	}
}

func TestValidateAll_ValidItemRetained(t *testing.T) {
	v := New(DefaultSimilarityThreshold)
	valid, report := v.ValidateAll([]question.Item{validItem()})
	if len(valid) != 1 {
		t.Fatalf("expected 1 valid item, got %d", len(valid))
	}
	if report.TotalInput != 1 || report.TotalOutput != 1 {
		t.Errorf("report totals wrong: %+v", report)
	}
	if valid[0].Category != "Geography" {
		t.Errorf("expected title-cased category, got %q", valid[0].Category)
	}
	if valid[0].Difficulty != question.DifficultyEasy {
		t.Errorf("expected normalized difficulty Easy, got %q", valid[0].Difficulty)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Question = ""
	if _, reason, ok := v.Validate(item); ok || reason != ReasonMissingFields {
		t.Errorf("expected missing_fields rejection, got ok=%v reason=%q", ok, reason)
	}

	item = validItem()
	item.Options = nil
	if _, reason, ok := v.Validate(item); ok || reason != ReasonMissingFields {
		t.Errorf("expected missing_fields rejection for nil options, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidate_QuestionLength(t *testing.T) {
	v := New(0)

	item := validItem()
	item.Question = "Too short?"
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidLength {
		t.Errorf("expected invalid_length for short question, got ok=%v reason=%q", ok, reason)
	}

	item = validItem()
	long := make([]byte, 301)
	for i := range long {
		long[i] = 'x'
	}
	item.Question = string(long)
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidLength {
		t.Errorf("expected invalid_length for long question, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidate_DuplicateOptionValuesRejected(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Options = question.Options{"A": "Paris", "B": "Paris", "C": "Rome", "D": "Berlin"}
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidOptions {
		t.Errorf("expected invalid_options for duplicate value, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidate_MissingOrEmptyOption(t *testing.T) {
	v := New(0)

	item := validItem()
	delete(item.Options, "D")
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidOptions {
		t.Errorf("expected invalid_options for missing key, got ok=%v reason=%q", ok, reason)
	}

	item = validItem()
	item.Options["C"] = "   "
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidOptions {
		t.Errorf("expected invalid_options for blank value, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidate_OptionsListConvertsToMap(t *testing.T) {
	raw := []byte(`{
		"question": "What is the capital of France?",
		"options": ["Paris", "London", "Berlin", "Rome"],
		"answer": "A",
		"category": "Geography",
		"difficulty": "Easy",
		"explanation": "Paris is the capital."
	}`)
	var item question.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	v := New(0)
	cleaned, _, ok := v.Validate(item)
	if !ok {
		t.Fatal("expected item with list options to validate")
	}
	if cleaned.Options["B"] != "London" {
		t.Errorf("expected list converted in order, got %v", cleaned.Options)
	}
}

func TestValidate_AnswerLowercaseKey(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Answer = " b "
	cleaned, _, ok := v.Validate(item)
	if !ok {
		t.Fatal("expected lowercase key to resolve")
	}
	if cleaned.Answer != "B" {
		t.Errorf("expected answer B, got %q", cleaned.Answer)
	}
	if v.Report().AutoCorrected != 0 {
		t.Errorf("case normalization should not count as auto-correction")
	}
}

func TestValidate_AnswerResolvedFromOptionText(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Answer = "Berlin"
	cleaned, _, ok := v.Validate(item)
	if !ok {
		t.Fatal("expected option-text answer to resolve")
	}
	if cleaned.Answer != "C" {
		t.Errorf("expected answer C, got %q", cleaned.Answer)
	}
	if v.Report().AutoCorrected != 1 {
		t.Errorf("expected 1 auto-correction, got %d", v.Report().AutoCorrected)
	}
}

func TestValidate_AnswerFuzzyResolution(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Answer = "Londonn" // close to option B, above the 0.8 cutoff
	cleaned, _, ok := v.Validate(item)
	if !ok {
		t.Fatal("expected fuzzy answer to resolve")
	}
	if cleaned.Answer != "B" {
		t.Errorf("expected answer B, got %q", cleaned.Answer)
	}
	if v.Report().AutoCorrected != 1 {
		t.Errorf("expected auto-correction counted, got %d", v.Report().AutoCorrected)
	}
}

func TestValidate_UnresolvableAnswerRejected(t *testing.T) {
	v := New(0)
	item := validItem()
	item.Answer = "Madrid"
	if _, reason, ok := v.Validate(item); ok || reason != ReasonInvalidAnswer {
		t.Errorf("expected invalid_answer, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidate_ContentIssues(t *testing.T) {
	v := New(0)

	item := validItem()
	item.Question = "? is the capital of France"
	if _, reason, ok := v.Validate(item); ok || reason != ReasonContentIssue {
		t.Errorf("expected content_issue for leading '?', got ok=%v reason=%q", ok, reason)
	}

	item = validItem()
	item.Question = "1234 5678 9012 3456 7890"
	if _, reason, ok := v.Validate(item); ok || reason != ReasonContentIssue {
		t.Errorf("expected content_issue for numeric question, got ok=%v reason=%q", ok, reason)
	}
}

func TestValidateAll_CasingDuplicateRejected(t *testing.T) {
	first := validItem()
	second := validItem()
	second.Question = "what is the capital of france"

	v := New(DefaultSimilarityThreshold)
	valid, report := v.ValidateAll([]question.Item{first, second})
	if len(valid) != 1 {
		t.Fatalf("expected 1 valid item, got %d", len(valid))
	}
	if report.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", report.Duplicates)
	}
}

func TestValidateAll_Deterministic(t *testing.T) {
	items := []question.Item{validItem()}

	rephrased := validItem()
	rephrased.Question = "What is the capital city of France?"
	items = append(items, rephrased)

	short := validItem()
	short.Question = "Short?"
	items = append(items, short)

	badAnswer := validItem()
	badAnswer.Question = "Which river flows through the city of Paris?"
	badAnswer.Answer = "Nope"
	items = append(items, badAnswer)

	first, firstReport := New(DefaultSimilarityThreshold).ValidateAll(items)
	second, secondReport := New(DefaultSimilarityThreshold).ValidateAll(items)

	if len(first) != len(second) {
		t.Fatalf("retained counts differ: %d vs %d", len(first), len(second))
	}
	firstReport.GeneratedAt = secondReport.GeneratedAt
	if firstReport != secondReport {
		t.Errorf("reports differ:\n%+v\n%+v", firstReport, secondReport)
	}
}

func TestValidateAll_Reconciliation(t *testing.T) {
	items := []question.Item{validItem()}

	dup := validItem()
	items = append(items, dup)

	broken := validItem()
	broken.Options = question.Options{"A": "x", "B": "x", "C": "y", "D": "z"}
	items = append(items, broken)

	_, report := New(DefaultSimilarityThreshold).ValidateAll(items)
	total := report.MissingFields + report.InvalidLength + report.InvalidOptions +
		report.InvalidAnswer + report.ContentIssues + report.Duplicates
	if total != report.Dropped() {
		t.Errorf("reason counters (%d) do not reconcile with dropped (%d)", total, report.Dropped())
	}
}

func TestNormalizeDifficultySynonyms(t *testing.T) {
	cases := map[string]string{
		"basic":       question.DifficultyEasy,
		"ADVANCED":    question.DifficultyHard,
		"intermediate": question.DifficultyMedium,
		" hard ":      question.DifficultyHard,
		"unknown":     question.DifficultyMedium,
		"":            question.DifficultyMedium,
	}
	for in, want := range cases {
		if got := normalizeDifficulty(in); got != want {
			t.Errorf("normalizeDifficulty(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"geography":         "Geography",
		"GENERAL KNOWLEDGE": "General Knowledge",
		"world history":     "World History",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
