package llm

import (
	"regexp"
	"strings"
)

// fencedDocument matches a completion that is one markdown code fence and nothing else.
var fencedDocument = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\n(.*?)\\n?```\\s*$")

// cleanCompletion unwraps a completion the model wrapped entirely in a code fence.
// Any other content is returned byte for byte.
func cleanCompletion(content string) string {
	m := fencedDocument.FindStringSubmatch(content)
	if len(m) < 2 || strings.Contains(m[1], "```") {
		return content
	}
	return m[1]
}

// finish applies the shared completion contract: unwrap, then reject empty text.
func finish(provider, content string) (Response, error) {
	content = cleanCompletion(content)
	if strings.TrimSpace(content) == "" {
		return Response{}, emptyCompletion(provider)
	}
	return Response{Content: content}, nil
}
