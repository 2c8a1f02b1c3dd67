package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bitrise-io/docs-ai-assistant/common"
	"github.com/bitrise-io/docs-ai-assistant/logger"
)

const (
	ProviderOpenAI           = "openai"
	ProviderAnthropic        = "anthropic"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderGemini           = "gemini"
)

// OptionType defines the type of option
type OptionType string

// Available option types
const (
	ModelNameOption   OptionType = "model"
	MaxTokensOption   OptionType = "max_tokens"
	APITimeoutOption  OptionType = "api_timeout"
	BaseURLOption     OptionType = "base_url"
	TemperatureOption OptionType = "temperature"
	HTTPClientOption  OptionType = "http_client"
)

// Option represents a generic configuration option for any LLM provider
type Option struct {
	Type  OptionType
	Value any
}

// WithModel creates an option to set the model name
func WithModel(model string) Option {
	return Option{
		Type:  ModelNameOption,
		Value: model,
	}
}

// WithMaxTokens creates an option to set the max tokens
func WithMaxTokens(maxTokens int) Option {
	return Option{
		Type:  MaxTokensOption,
		Value: maxTokens,
	}
}

// WithAPITimeout creates an option to set the API timeout in seconds
func WithAPITimeout(timeout int) Option {
	return Option{
		Type:  APITimeoutOption,
		Value: timeout,
	}
}

// WithBaseURL points the client at a different endpoint (gateways, self-hosted models, tests)
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithTemperature creates an option to set the sampling temperature
func WithTemperature(temperature float64) Option {
	return Option{
		Type:  TemperatureOption,
		Value: temperature,
	}
}

// WithHTTPClient sets the HTTP client used for provider calls
func WithHTTPClient(client *http.Client) Option {
	return Option{
		Type:  HTTPClientOption,
		Value: client,
	}
}

// Request represents the data needed to generate a prompt for the LLM
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Response represents the response from the LLM
type Response struct {
	Content string
}

// LLM defines the interface for language model prompting
type LLM interface {
	// Prompt sends a request to the language model and returns its response.
	// Failures are *RateLimitError or *UpstreamError.
	Prompt(ctx context.Context, req Request) (Response, error)
}

// config is the provider-independent view of the options.
type config struct {
	modelName   string
	maxTokens   int
	apiTimeout  int // in seconds
	baseURL     string
	temperature float64
	httpClient  *http.Client
}

func newConfig(defaultModel string, opts []Option) config {
	cfg := config{
		modelName:   defaultModel,
		maxTokens:   4000,
		apiTimeout:  30,
		temperature: 0.2,
	}

	for _, opt := range opts {
		switch opt.Type {
		case ModelNameOption:
			if modelName, ok := opt.Value.(string); ok && modelName != "" {
				cfg.modelName = modelName
			}
		case MaxTokensOption:
			if maxTokens, ok := opt.Value.(int); ok && maxTokens > 0 {
				cfg.maxTokens = maxTokens
			}
		case APITimeoutOption:
			if timeout, ok := opt.Value.(int); ok && timeout > 0 {
				cfg.apiTimeout = timeout
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok {
				cfg.baseURL = baseURL
			}
		case TemperatureOption:
			if temperature, ok := opt.Value.(float64); ok {
				cfg.temperature = temperature
			}
		case HTTPClientOption:
			if client, ok := opt.Value.(*http.Client); ok {
				cfg.httpClient = client
			}
		}
	}

	if cfg.httpClient == nil {
		cfg.httpClient = common.NewRetryableClient(common.DefaultRetryConfig()).StandardClient()
	}

	return cfg
}

// NewLLM creates the client for the named provider.
func NewLLM(providerName, apiKey string, opts ...Option) (LLM, error) {
	var llmClient LLM
	var err error

	switch providerName {
	case ProviderOpenAI:
		llmClient, err = NewOpenAI(apiKey, opts...)
	case ProviderAnthropic:
		llmClient, err = NewAnthropic(apiKey, opts...)
	case ProviderOpenAICompatible:
		llmClient, err = NewCompatible(apiKey, opts...)
	case ProviderGemini:
		llmClient, err = NewGemini(apiKey, opts...)
	default:
		err = fmt.Errorf("unsupported provider: %s", providerName)
	}

	if err == nil {
		logger.Infof("Using LLM provider: %s", providerName)
	}

	return llmClient, err
}
