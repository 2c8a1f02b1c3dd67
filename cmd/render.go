package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/bitrise-io/docs-ai-assistant/diff"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	addedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E7D32"))
	removedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")).Strikethrough(true)
	unchangedStyle = lipgloss.NewStyle().Faint(true)
)

// renderSuggestion prints the line diff followed by the changed portion as markdown.
func renderSuggestion(w io.Writer, res suggestion.GenerationResult) error {
	fmt.Fprintln(w, headerStyle.Render("Proposed changes"))
	for _, seg := range res.Segments {
		for _, line := range strings.SplitAfter(seg.Value, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch seg.Kind {
			case diff.Added:
				fmt.Fprintln(w, addedStyle.Render("+ "+line))
			case diff.Removed:
				fmt.Fprintln(w, removedStyle.Render("- "+line))
			default:
				fmt.Fprintln(w, unchangedStyle.Render("  "+line))
			}
		}
	}

	if res.ChangedPortion == "" {
		fmt.Fprintln(w, headerStyle.Render("No changes suggested"))
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(res.ChangedPortion)
	if err != nil {
		return fmt.Errorf("failed to render changed portion: %w", err)
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, headerStyle.Render("Changed portion"))
	fmt.Fprint(w, out)
	return nil
}
