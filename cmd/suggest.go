package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/prompt"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
	"github.com/spf13/cobra"
)

type suggestOptions struct {
	prompt    string
	selection string
	yes       bool
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <document-id>",
	Short: "Propose an AI revision of a document field",
	Long: `Ask the model to revise one field of a stored document, show the changes,
and store the revision only when it is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyLLMFlags(cmd)

		field, _ := cmd.Flags().GetString("field")
		opts := suggestOptions{}
		opts.prompt, _ = cmd.Flags().GetString("prompt")
		opts.selection, _ = cmd.Flags().GetString("selection")
		opts.yes, _ = cmd.Flags().GetBool("yes")

		llmClient, err := newLLMClient(settings)
		if err != nil {
			return fmt.Errorf("failed to create client for LLM provider: %w", err)
		}

		store, closeStore, err := newDocumentStore(cmd.Context(), settings.Store)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		defer closeQuietly(closeStore)

		unit := suggestion.Unit{DocumentID: args[0], Field: document.Field(field)}
		p := suggestion.New(unit, llmClient, store, prompt.GetSystemPrompt(settings))
		return runSuggest(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), store, p, opts)
	},
}

// runSuggest drives one submit and then an accept or reject of the result.
func runSuggest(ctx context.Context, in io.Reader, out io.Writer, store document.Store, p *suggestion.Presenter, opts suggestOptions) error {
	unit := p.Unit()
	entity, err := store.Get(ctx, unit.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", unit.DocumentID, err)
	}
	if !entity.Kind.HasField(unit.Field) {
		return &document.FieldError{Kind: entity.Kind, Field: unit.Field, Reason: "not a field of this kind"}
	}

	snap, err := p.Dispatch(ctx, suggestion.Event{
		Kind: suggestion.EventSubmit,
		Payload: suggestion.EditRequest{
			Prompt:       opts.prompt,
			SelectedText: opts.selection,
			FullText:     entity.Fields[unit.Field],
		},
	})
	if err != nil {
		return err
	}

	if err := renderSuggestion(out, *snap.Result); err != nil {
		return err
	}

	if snap.Result.ChangedPortion == "" {
		_, err = p.Dispatch(ctx, suggestion.Event{Kind: suggestion.EventReject})
		return err
	}

	accept := opts.yes
	if !accept {
		accept, err = confirm(in, out, "Apply these changes?")
		if err != nil {
			return err
		}
	}

	if !accept {
		if _, err := p.Dispatch(ctx, suggestion.Event{Kind: suggestion.EventReject}); err != nil {
			return err
		}
		fmt.Fprintln(out, "Suggestion discarded.")
		return nil
	}

	if _, err := p.Dispatch(ctx, suggestion.Event{Kind: suggestion.EventAccept}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s of %s.\n", unit.Field, unit.DocumentID)
	return nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	addLLMFlags(suggestCmd)
	suggestCmd.Flags().StringP("field", "f", string(document.FieldContent), "Field of the document to revise")
	suggestCmd.Flags().String("prompt", "", "Instruction for the revision")
	suggestCmd.Flags().StringP("selection", "s", "", "Part of the field the instruction focuses on (optional)")
	suggestCmd.Flags().BoolP("yes", "y", false, "Accept the suggestion without asking")
	_ = suggestCmd.MarkFlagRequired("prompt")
}
