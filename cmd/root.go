package cmd

import (
	"github.com/bitrise-io/docs-ai-assistant/common"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	logLevel   string
	logFormat  string
	configPath string

	// settings is loaded before any subcommand runs
	settings = common.WithDefaultSettings()
)

var rootCmd = &cobra.Command{
	Use:   "docs-ai",
	Short: "Docs AI Assistant - AI assisted editing for product documentation",
	Long: `Docs AI Assistant revises product documentation with a hosted language model.
It proposes a complete revision of a text, shows what changed, and stores the
revision only after it is accepted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger with the specified log level
		logger.Init(logLevel, logFormat)
		logger.Debugf("Log level set to: %s", logLevel)

		loaded, err := common.LoadSettings(configPath)
		if err != nil {
			return err
		}
		settings = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior when no subcommands are provided
		_ = cmd.Help()
	},
}

// Execute runs the root command and handles errors
func Execute() error {
	// Subcommands are added in their respective init() functions
	return rootCmd.Execute()
}

func init() {
	// Add persistent flags that will be available to all subcommands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set the logging level (debug, info, warn, error, dpanic, panic, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatJSON,
		"Set the log encoding (json, console)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a YAML or TOML settings file (default: docs-ai.yml, docs-ai.yaml or docs-ai.toml if present)")
}
