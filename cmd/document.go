package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `Create and inspect documents in the configured store.`,
}

var documentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := newDocumentStore(cmd.Context(), settings.Store)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		defer closeQuietly(closeStore)

		e, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e)
	},
}

var documentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document",
	Long: `Create a document of the given kind. Fields are given as name=value;
a value starting with @ is read from that file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		rawFields, _ := cmd.Flags().GetStringArray("field")

		fields, err := parseFieldFlags(rawFields)
		if err != nil {
			return err
		}

		store, closeStore, err := newDocumentStore(cmd.Context(), settings.Store)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		defer closeQuietly(closeStore)

		e, err := store.Create(cmd.Context(), document.Kind(kind), fields)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), e)
	},
}

// parseFieldFlags turns name=value pairs into a field set.
func parseFieldFlags(raw []string) (document.FieldSet, error) {
	fields := document.FieldSet{}
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q, expected name=value", kv)
		}
		if strings.HasPrefix(value, "@") {
			data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
			if err != nil {
				return nil, fmt.Errorf("failed to read field %s: %w", name, err)
			}
			value = string(data)
		}
		fields[document.Field(name)] = value
	}
	return fields, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func closeQuietly(closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warnf("failed to close document store: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(documentCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentCreateCmd)

	documentCreateCmd.Flags().StringP("kind", "k", string(document.KindDocument),
		"Kind of the document (document, epic, user_story, use_case, functional_requirement)")
	documentCreateCmd.Flags().StringArray("field", nil, "Field as name=value, repeatable; @path reads the value from a file")
}
