package llm

import (
	"context"
	"errors"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/logger"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompatibleModel talks to any OpenAI-compatible chat completions endpoint
// (DeepSeek, Ollama, LiteLLM and similar gateways).
type CompatibleModel struct {
	client      openai.Client
	modelName   string
	maxTokens   int
	temperature float64
	apiTimeout  int // in seconds
}

// NewCompatible creates a client for an OpenAI-compatible endpoint. A base URL is required.
func NewCompatible(apiKey string, opts ...Option) (*CompatibleModel, error) {
	cfg := newConfig("", opts)
	if cfg.baseURL == "" {
		return nil, errors.New("openai-compatible provider requires a base URL")
	}
	if cfg.modelName == "" {
		return nil, errors.New("openai-compatible provider requires a model name")
	}

	clientOpts := []option.RequestOption{
		option.WithBaseURL(cfg.baseURL),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}

	logger.Debugf("OpenAI-compatible client initialized with base URL: %s, model: %s", cfg.baseURL, cfg.modelName)

	return &CompatibleModel{
		client:      openai.NewClient(clientOpts...),
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
		apiTimeout:  cfg.apiTimeout,
	}, nil
}

// Prompt sends a chat completion request and returns the response
func (c *CompatibleModel) Prompt(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.apiTimeout)*time.Second)
	defer cancel()

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.UserPrompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    msgs,
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		logger.Errorf("failed to create chat completion: %v", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, classify(ProviderOpenAICompatible, apiErr.StatusCode, err)
		}
		return Response{}, classify(ProviderOpenAICompatible, 0, err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, emptyCompletion(ProviderOpenAICompatible)
	}

	return finish(ProviderOpenAICompatible, resp.Choices[0].Message.Content)
}
