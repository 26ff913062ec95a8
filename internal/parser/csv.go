package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mbella-dev/questforge/internal/document"
)

// CSVParser handles CSV files. Rows are rendered as "header: value"
// sentences and grouped into fixed-size batches so downstream chunking
// sees coherent text.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &document.Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		doc.Sections = append(doc.Sections, document.Section{
			// 1-indexed row numbers, header excluded.
			Heading: fmt.Sprintf("Rows %d-%d", i+2, end+1),
			Text:    text.String(),
		})
	}

	return doc, nil
}
