package parser

import (
	"fmt"
	"strings"
	"testing"
)

func TestCSVParser_RowsBecomeLabeledText(t *testing.T) {
	input := "country,capital\nFrance,Paris\nKenya,Nairobi\n"
	doc, err := (&CSVParser{}).Parse(strings.NewReader(input), "capitals.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	s := doc.Sections[0]
	if s.Heading != "Rows 2-3" {
		t.Errorf("heading = %q", s.Heading)
	}
	for _, want := range []string{"Headers: country, capital", "country: France, capital: Paris", "capital: Nairobi"} {
		if !strings.Contains(s.Text, want) {
			t.Errorf("section text missing %q:\n%s", want, s.Text)
		}
	}
}

func TestCSVParser_BatchesLargeFiles(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("n,sq\n")
	for i := 1; i <= 45; i++ {
		fmt.Fprintf(&sb, "%d,%d\n", i, i*i)
	}
	doc, err := (&CSVParser{}).Parse(strings.NewReader(sb.String()), "squares.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 batches of 20, got %d", len(doc.Sections))
	}
	if doc.Sections[2].Heading != "Rows 42-46" {
		t.Errorf("last batch heading = %q", doc.Sections[2].Heading)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	doc, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(doc.Sections))
	}
}
