package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/logger"
	"google.golang.org/genai"
)

// GeminiModel implements the LLM interface using the Gemini API
type GeminiModel struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature float64
	apiTimeout  int // in seconds
}

// NewGemini creates a new Gemini client
func NewGemini(apiKey string, opts ...Option) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key cannot be empty")
	}

	cfg := newConfig("gemini-2.5-flash", opts)

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	}
	if cfg.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debugf("Gemini client initialized with model: %s, max tokens: %d", cfg.modelName, cfg.maxTokens)

	return &GeminiModel{
		client:      client,
		modelName:   cfg.modelName,
		maxTokens:   cfg.maxTokens,
		temperature: cfg.temperature,
		apiTimeout:  cfg.apiTimeout,
	}, nil
}

// Prompt sends a request to Gemini and returns the response
func (g *GeminiModel) Prompt(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.apiTimeout)*time.Second)
	defer cancel()

	temperature := float32(g.temperature)
	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxTokens),
		Temperature:     &temperature,
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.UserPrompt), genConfig)
	if err != nil {
		logger.Errorf("failed to generate content: %v", err)
		return Response{}, classify(ProviderGemini, geminiStatus(err), err)
	}

	return finish(ProviderGemini, resp.Text())
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
