package llm

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bitrise-io/docs-ai-assistant/logger"
)

// AnthropicModel implements the LLM interface using Anthropic's API
type AnthropicModel struct {
	client      anthropic.Client
	modelName   string
	maxTokens   int
	temperature float64
	apiTimeout  int // in seconds
}

// NewAnthropic creates a new Anthropic client
func NewAnthropic(apiKey string, opts ...Option) (*AnthropicModel, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key cannot be empty")
	}

	cfg := newConfig("claude-3.7-sonnet", opts)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Throttling is surfaced to the caller, never retried by the SDK.
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}

	model := &AnthropicModel{
		client:      anthropic.NewClient(clientOpts...),
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
		apiTimeout:  cfg.apiTimeout,
	}

	logger.Debugf("Anthropic client initialized with model: %s, max tokens: %d, timeout: %d seconds",
		model.modelName, model.maxTokens, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to Anthropic and returns the response
func (a *AnthropicModel) Prompt(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.apiTimeout)*time.Second)
	defer cancel()

	messageParams := anthropic.MessageNewParams{
		Model:       a.model(),
		MaxTokens:   int64(a.maxTokens),
		Temperature: anthropic.Float(a.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		messageParams.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	logger.Debugf("Sending request to Anthropic with model %s, max tokens %d", a.modelName, a.maxTokens)

	message, err := a.client.Messages.New(ctx, messageParams)
	if err != nil {
		logger.Errorf("failed to create message: %v", err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return Response{}, classify(ProviderAnthropic, apiErr.StatusCode, err)
		}
		return Response{}, classify(ProviderAnthropic, 0, err)
	}

	var content string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		}
	}

	return finish(ProviderAnthropic, content)
}

// model maps the short aliases used in settings files to API model identifiers.
func (a *AnthropicModel) model() anthropic.Model {
	switch a.modelName {
	case "claude-3.7-sonnet":
		return anthropic.ModelClaude3_7SonnetLatest
	case "claude-3.5-sonnet":
		return anthropic.ModelClaude3_5SonnetLatest
	case "claude-3.5-haiku":
		return anthropic.ModelClaude3_5HaikuLatest
	default:
		return anthropic.Model(a.modelName)
	}
}
