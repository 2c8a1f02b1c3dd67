package llm

import (
	"context"
	"errors"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIModel implements the LLM interface using OpenAI's API
type OpenAIModel struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	apiTimeout  int // in seconds
}

// NewOpenAI creates a new OpenAI client
func NewOpenAI(apiKey string, opts ...Option) (*OpenAIModel, error) {
	if apiKey == "" {
		errMsg := "OpenAI API key cannot be empty"
		logger.Error(errMsg)
		return nil, errors.New(errMsg)
	}

	cfg := newConfig("gpt-4.1", opts)

	config := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		config.BaseURL = cfg.baseURL
	}
	if cfg.httpClient != nil {
		config.HTTPClient = cfg.httpClient
	}

	model := &OpenAIModel{
		client:      openai.NewClientWithConfig(config),
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: float32(cfg.temperature),
		apiTimeout:  cfg.apiTimeout,
	}

	logger.Debugf("OpenAI client initialized with model: %s, max tokens: %d, timeout: %d seconds",
		model.modelName, model.maxTokens, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to OpenAI and returns the response
func (o *OpenAIModel) Prompt(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.apiTimeout)*time.Second)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	logger.Debugf("Sending request to OpenAI with model %s, max tokens %d", o.modelName, o.maxTokens)

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		logger.Errorf("failed to create chat completion: %v", err)
		return Response{}, o.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		logger.Error("OpenAI response contained no choices")
		return Response{}, emptyCompletion(ProviderOpenAI)
	}

	return finish(ProviderOpenAI, resp.Choices[0].Message.Content)
}

func (o *OpenAIModel) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classify(ProviderOpenAI, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classify(ProviderOpenAI, reqErr.HTTPStatusCode, err)
	}
	return classify(ProviderOpenAI, 0, err)
}
