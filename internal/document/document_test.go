package document

import (
	"strings"
	"testing"
)

func TestText_JoinsSectionsInOrder(t *testing.T) {
	d := &Document{
		Title: "Guide",
		Sections: []Section{
			{Heading: "Intro", Text: "First part."},
			{Text: "   "},
			{Heading: "Body", Text: "Second part."},
		},
	}
	got := d.Text()
	want := "First part.\n\nSecond part."
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestWordCount(t *testing.T) {
	d := &Document{Sections: []Section{
		{Text: "one two three"},
		{Text: "four five"},
	}}
	if got := d.WordCount(); got != 5 {
		t.Errorf("WordCount() = %d, want 5", got)
	}
}

func TestMerge(t *testing.T) {
	a := &Document{Sections: []Section{{Text: "alpha"}}}
	b := &Document{Sections: []Section{{Text: "beta"}, {Text: "gamma"}}}

	m := Merge("corpus", a, nil, b)
	if m.Title != "corpus" {
		t.Errorf("title = %q", m.Title)
	}
	if len(m.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(m.Sections))
	}
	if m.Sections[2].Text != "gamma" {
		t.Errorf("section order lost: %v", m.Sections)
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"blank runs collapse", "a\n\n\n\nb", "a\n\nb"},
		{"space runs collapse", "a    b", "a b"},
		{"page number lines dropped", "text\n42\nmore", "text\n\nmore"},
		{"page labels dropped", "intro\nPage 7\nbody", "intro\n\nbody"},
		{"nul bytes stripped", "a\x00b", "ab"},
		{"trimmed", "  body  ", "body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClean_PageArtifacts(t *testing.T) {
	raw := "Chapter One\n\n12\n\nThe story begins.\x00\nPage 12\nIt continues."
	got := Clean(raw)
	if strings.Contains(got, "\x00") || strings.Contains(got, "Page 12") {
		t.Errorf("artifacts survived cleaning: %q", got)
	}
	if !strings.Contains(got, "The story begins.") {
		t.Errorf("content lost: %q", got)
	}
}
