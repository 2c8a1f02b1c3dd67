package prompt

import (
	"fmt"
	"strings"
)

// InvalidInputError reports a malformed edit request. It is raised before any
// provider call is made.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Compose builds the revision instruction sent to the model. The model is asked for
// the complete revised document, never a fragment.
func Compose(userPrompt, selectedText, fullText string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", &InvalidInputError{Field: "prompt", Reason: "must not be empty"}
	}
	if fullText == "" {
		return "", &InvalidInputError{Field: "fullText", Reason: "must not be empty"}
	}

	return `You are revising a product documentation text written in markdown.
## Instruction
` + userPrompt + `
## Focus
` + getFocus(selectedText) + `
## Rules
- Apply the instruction to the focused text only.
- Keep every other line of the document exactly as it is, including blank lines.
- Preserve the markdown formatting: headings, lists, tables, emphasis and links.
- Do not add commentary, explanations or code fences around the document.
- Respond with the complete revised document, from the first line to the last.
[Document Start]
` + fullText + `
[Document End]`, nil
}

func getFocus(selectedText string) string {
	if strings.TrimSpace(selectedText) == "" {
		return "No text is selected, the instruction applies to the whole document."
	}
	return `The user selected the following part of the document:
[Selection Start]
` + selectedText + `
[Selection End]`
}
