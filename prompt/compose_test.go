package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/bitrise-io/docs-ai-assistant/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeRejectsEmptyPrompt(t *testing.T) {
	_, err := Compose("", "", "abc")

	var invalid *InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "prompt", invalid.Field)
}

func TestComposeRejectsBlankPrompt(t *testing.T) {
	_, err := Compose("  \n\t", "abc", "abc")

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "prompt", invalid.Field)
}

func TestComposeRejectsEmptyFullText(t *testing.T) {
	_, err := Compose("shorten it", "", "")

	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "fullText", invalid.Field)
}

func TestComposeIncludesAllParts(t *testing.T) {
	out, err := Compose("Make it more formal", "Line2", "Line1\nLine2\nLine3")
	require.NoError(t, err)

	assert.Contains(t, out, "Make it more formal")
	assert.Contains(t, out, "[Selection Start]\nLine2\n[Selection End]")
	assert.Contains(t, out, "[Document Start]\nLine1\nLine2\nLine3\n[Document End]")
	assert.Contains(t, out, "complete revised document")
}

func TestComposeWithoutSelectionTargetsWholeDocument(t *testing.T) {
	out, err := Compose("Fix typos", "", "Teh document")
	require.NoError(t, err)

	assert.Contains(t, out, "applies to the whole document")
	assert.False(t, strings.Contains(out, "[Selection Start]"))
}

func TestGetSystemPrompt(t *testing.T) {
	settings := common.WithDefaultSettings()
	out := GetSystemPrompt(settings)
	assert.Contains(t, out, "Doc Bot")
	assert.NotContains(t, out, "language.")

	settings.Language = "hu-HU"
	settings.Tone = "You are a terse technical writer."
	out = GetSystemPrompt(settings)
	assert.True(t, strings.HasPrefix(out, "You are a terse technical writer."))
	assert.Contains(t, out, "Use hu-HU language.")
}
