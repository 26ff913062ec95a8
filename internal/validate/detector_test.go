package validate

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"What is the Capital of France?": "what is the capital of france",
		"  Hello,   World!  ":            "hello world",
		"A-B_C":                          "ab_c",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetector_ExactMatchAfterNormalization(t *testing.T) {
	d := NewDetector(DefaultSimilarityThreshold)
	if d.IsDuplicate("What is the capital of France?") {
		t.Fatal("first text should not be a duplicate")
	}
	if !d.IsDuplicate("what is the capital of france") {
		t.Error("casing/punctuation variant should be flagged duplicate")
	}
}

func TestDetector_NearDuplicate(t *testing.T) {
	d := NewDetector(DefaultSimilarityThreshold)
	d.IsDuplicate("Which river flows through the capital of Cameroon?")
	if !d.IsDuplicate("Which river flows through the capital of Cameroun?") {
		t.Error("one-letter variant should be flagged duplicate")
	}
}

func TestDetector_DistinctTextsAccepted(t *testing.T) {
	d := NewDetector(DefaultSimilarityThreshold)
	texts := []string{
		"What is the capital of France?",
		"Which mountain is the tallest peak in Africa by elevation?",
		"In what year did the Second World War come to an end?",
	}
	for _, txt := range texts {
		if d.IsDuplicate(txt) {
			t.Errorf("distinct text flagged as duplicate: %q", txt)
		}
	}
	if d.Size() != len(texts) {
		t.Errorf("expected corpus size %d, got %d", len(texts), d.Size())
	}
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(DefaultSimilarityThreshold)
	d.IsDuplicate("What is the capital of France?")
	d.Reset()
	if d.Size() != 0 {
		t.Fatalf("expected empty corpus after reset, got %d", d.Size())
	}
	if d.IsDuplicate("What is the capital of France?") {
		t.Error("text should not be a duplicate after reset")
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if got := Similarity("abcdef", "abcdef"); got != 1.0 {
		t.Errorf("identical strings: expected 1.0, got %f", got)
	}
	if got := Similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("disjoint strings: expected 0.0, got %f", got)
	}
}

func TestDetector_ThresholdFallback(t *testing.T) {
	d := NewDetector(-1)
	if d.threshold != DefaultSimilarityThreshold {
		t.Errorf("expected fallback threshold %.2f, got %.2f", DefaultSimilarityThreshold, d.threshold)
	}
}
