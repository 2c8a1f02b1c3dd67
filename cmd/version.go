package cmd

import (
	"fmt"

	"github.com/bitrise-io/docs-ai-assistant/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the version of the assistant`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Docs AI Assistant v%s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
