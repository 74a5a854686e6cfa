package domain

import "strings"

// CaseDraft is a single case as produced by the AI, before normalization.
// Exactly one shape applies: either Text is set (raw string case) or
// Steps/ExpectedResult are set (structured case). The shape is resolved
// once at ingestion; downstream code only ever sees the rendered content.
type CaseDraft struct {
	Text           string
	Steps          string
	ExpectedResult string
}

// Structured reports whether the draft carries structured steps/result fields.
func (d CaseDraft) Structured() bool {
	return d.Steps != "" || d.ExpectedResult != ""
}

// Render produces the canonical content string for the draft.
func (d CaseDraft) Render() string {
	if !d.Structured() {
		return strings.TrimSpace(d.Text)
	}
	var b strings.Builder
	if d.Steps != "" {
		b.WriteString("Steps: ")
		b.WriteString(strings.TrimSpace(d.Steps))
	}
	if d.ExpectedResult != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Expected Result: ")
		b.WriteString(strings.TrimSpace(d.ExpectedResult))
	}
	return b.String()
}
