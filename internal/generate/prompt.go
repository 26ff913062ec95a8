package generate

import (
	"fmt"
	"strings"
)

const promptRequirements = `REQUIREMENTS:
- Each question must have exactly 4 options (A, B, C, D)
- Questions should be clear, unambiguous and answerable from the text
- Vary the difficulty (Easy, Medium, Hard)
- Include a brief explanation for each answer
- Choose an appropriate category for each question based on the content

Return ONLY valid JSON with this EXACT schema (no markdown, no code blocks):
[
  {
    "question": "Question text here?",
    "options": {
      "A": "First option",
      "B": "Second option",
      "C": "Third option",
      "D": "Fourth option"
    },
    "answer": "B",
    "category": "Category name",
    "difficulty": "Easy",
    "explanation": "Brief explanation"
  }
]`

// BuildPrompt creates the generation prompt for one chunk.
func BuildPrompt(chunk, topic string, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From this text, create %d factual multiple-choice questions about %s.\n\n", count, topic)
	sb.WriteString(promptRequirements)
	sb.WriteString("\n\nTEXT:\n")
	sb.WriteString(chunk)
	sb.WriteString("\n\nCRITICAL: Return ONLY the JSON array. No additional text, markdown, or formatting.")
	return sb.String()
}
