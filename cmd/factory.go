package cmd

import (
	"context"
	"fmt"

	"github.com/bitrise-io/docs-ai-assistant/common"
	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/logger"
)

const defaultSQLiteDSN = "docs-ai.db"

// newLLMClient builds the completion client described by s.
func newLLMClient(s common.Settings) (llm.LLM, error) {
	apiKey, err := common.GetAPIKey()
	if err != nil && s.LLM.Provider != llm.ProviderOpenAICompatible {
		return nil, err
	}

	httpClient := common.NewRetryableClient(common.RetryConfigFromSettings(s.Retry)).StandardClient()

	return llm.NewLLM(s.LLM.Provider, apiKey,
		llm.WithModel(s.LLM.Model),
		llm.WithMaxTokens(s.LLM.MaxTokens),
		llm.WithAPITimeout(s.LLM.TimeoutSeconds),
		llm.WithBaseURL(s.LLM.BaseURL),
		llm.WithTemperature(s.LLM.Temperature),
		llm.WithHTTPClient(httpClient),
	)
}

// newDocumentStore opens the store named by the settings. The returned close
// function releases its resources.
func newDocumentStore(ctx context.Context, s common.StoreSettings) (document.Store, func() error, error) {
	noop := func() error { return nil }

	switch s.Driver {
	case common.StoreDriverMemory:
		logger.Warnf("Using the %s store driver: documents are lost when the process exits", s.Driver)
		return document.NewMemoryStore(), noop, nil
	case "", common.StoreDriverSQLite:
		dsn := s.DSN
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		store, err := document.OpenSQLStore(ctx, document.DialectSQLite, dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case common.StoreDriverPostgres:
		if s.DSN == "" {
			return nil, nil, fmt.Errorf("store.dsn is required for the postgres driver")
		}
		store, err := document.OpenSQLStore(ctx, document.DialectPostgres, s.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case common.StoreDriverGitHub:
		token, err := common.GetGitHubToken()
		if err != nil {
			return nil, nil, err
		}
		opts := []document.Option{
			document.WithAPIToken(token),
			document.WithOwner(s.GitHub.Owner),
			document.WithRepo(s.GitHub.Repo),
			document.WithBranch(s.GitHub.Branch),
			document.WithPath(s.GitHub.Path),
		}
		if s.GitHub.BaseURL != "" {
			opts = append(opts, document.WithBaseURL(s.GitHub.BaseURL))
		}
		store, err := document.NewGitHubStore(opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", s.Driver)
	}
}
