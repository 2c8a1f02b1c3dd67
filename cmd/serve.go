package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/bitrise-io/docs-ai-assistant/prompt"
	"github.com/bitrise-io/docs-ai-assistant/server"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editing API over HTTP",
	Long:  `Start the HTTP API used by the documentation editor: AI edits, suggestions and documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyLLMFlags(cmd)
		if cmd.Flags().Changed("addr") {
			settings.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		llmClient, err := newLLMClient(settings)
		if err != nil {
			return fmt.Errorf("failed to create client for LLM provider: %w", err)
		}

		store, closeStore, err := newDocumentStore(ctx, settings.Store)
		if err != nil {
			return fmt.Errorf("failed to open document store: %w", err)
		}
		defer closeQuietly(closeStore)

		systemPrompt := prompt.GetSystemPrompt(settings)
		manager := suggestion.NewManager(llmClient, store, systemPrompt, settings.Suggestions.IdleTTL())
		defer manager.Close()

		srv, err := server.New(ctx, server.Config{
			LLM:            llmClient,
			Store:          store,
			Suggestions:    manager,
			SystemPrompt:   systemPrompt,
			RequestsPerSec: settings.Server.RequestsPerSecond,
			Burst:          settings.Server.Burst,
			RequestTimeout: settings.Server.RequestTimeout(),
		})
		if err != nil {
			return err
		}

		logger.Infow("starting server",
			"addr", settings.Server.Addr,
			"provider", settings.LLM.Provider,
			"model", settings.LLM.Model,
			"store", settings.Store.Driver,
		)
		return srv.ListenAndServe(ctx, settings.Server.Addr)
	},
}

// applyLLMFlags lets --provider and --model override the settings file.
func applyLLMFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("provider") {
		settings.LLM.Provider, _ = cmd.Flags().GetString("provider")
	}
	if cmd.Flags().Changed("model") {
		settings.LLM.Model, _ = cmd.Flags().GetString("model")
	}
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("provider", "p", "openai", "LLM provider to use (openai, anthropic, openai-compatible, gemini)")
	cmd.Flags().StringP("model", "m", "gpt-4.1", "LLM model to use")
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addLLMFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
