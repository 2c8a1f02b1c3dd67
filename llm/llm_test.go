package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	f := &fakeProvider{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

var testRequest = Request{SystemPrompt: "be brief", UserPrompt: "revise"}

const (
	openAIOK = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4.1",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Line1\nLine2 improved"}}]}`
	openAIEmpty     = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4.1","choices":[]}`
	openAIThrottled = `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`
	openAIServer    = `{"error":{"message":"internal","type":"server_error"}}`

	anthropicOK = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-7-sonnet-latest",
		"content":[{"type":"text","text":"Line1\nLine2 improved"}],"stop_reason":"end_turn",
		"usage":{"input_tokens":3,"output_tokens":4}}`
	anthropicThrottled = `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`

	geminiOK        = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Line1\nLine2 improved"}]},"finishReason":"STOP"}]}`
	geminiThrottled = `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`
)

func TestOpenAIPrompt(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, openAIOK)
	client, err := NewOpenAI("key", WithBaseURL(f.srv.URL), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	resp, err := client.Prompt(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved", resp.Content)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestOpenAIRateLimit(t *testing.T) {
	f := newFakeProvider(t, http.StatusTooManyRequests, openAIThrottled)
	// Default transport: no retries for throttled requests.
	client, err := NewOpenAI("key", WithBaseURL(f.srv.URL))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, ProviderOpenAI, rateErr.Provider)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestOpenAIServerError(t *testing.T) {
	f := newFakeProvider(t, http.StatusInternalServerError, openAIServer)
	client, err := NewOpenAI("key", WithBaseURL(f.srv.URL), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
}

func TestOpenAIEmptyCompletion(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, openAIEmpty)
	client, err := NewOpenAI("key", WithBaseURL(f.srv.URL), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestOpenAINetworkFailure(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, openAIOK)
	url := f.srv.URL
	f.srv.Close()

	client, err := NewOpenAI("key", WithBaseURL(url))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 0, upErr.StatusCode)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI("")
	assert.Error(t, err)
}

func TestAnthropicPrompt(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, anthropicOK)
	client, err := NewAnthropic("key", WithBaseURL(f.srv.URL), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	resp, err := client.Prompt(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved", resp.Content)
}

func TestAnthropicRateLimit(t *testing.T) {
	f := newFakeProvider(t, http.StatusTooManyRequests, anthropicThrottled)
	client, err := NewAnthropic("key", WithBaseURL(f.srv.URL), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestCompatiblePrompt(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, openAIOK)
	client, err := NewCompatible("", WithBaseURL(f.srv.URL+"/v1/"), WithModel("llama3"), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	resp, err := client.Prompt(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved", resp.Content)
}

func TestCompatibleRateLimit(t *testing.T) {
	f := newFakeProvider(t, http.StatusTooManyRequests, openAIThrottled)
	client, err := NewCompatible("key", WithBaseURL(f.srv.URL+"/v1/"), WithModel("llama3"), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestNewCompatibleRequiresBaseURL(t *testing.T) {
	_, err := NewCompatible("key", WithModel("llama3"))
	assert.Error(t, err)

	_, err = NewCompatible("key", WithBaseURL("http://localhost:11434/v1/"))
	assert.Error(t, err)
}

func TestGeminiPrompt(t *testing.T) {
	f := newFakeProvider(t, http.StatusOK, geminiOK)
	client, err := NewGemini("key", WithBaseURL(f.srv.URL+"/"), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	resp, err := client.Prompt(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved", resp.Content)
}

func TestGeminiRateLimit(t *testing.T) {
	f := newFakeProvider(t, http.StatusTooManyRequests, geminiThrottled)
	client, err := NewGemini("key", WithBaseURL(f.srv.URL+"/"), WithHTTPClient(f.srv.Client()))
	require.NoError(t, err)

	_, err = client.Prompt(context.Background(), testRequest)
	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
}

func TestNewLLM(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		opts     []Option
		wantErr  bool
	}{
		{name: "openai", provider: ProviderOpenAI},
		{name: "anthropic", provider: ProviderAnthropic},
		{name: "gemini", provider: ProviderGemini},
		{name: "compatible", provider: ProviderOpenAICompatible, opts: []Option{WithBaseURL("http://localhost:1/v1/"), WithModel("m")}},
		{name: "unknown", provider: "mystery", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewLLM(tt.provider, "key", tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := newConfig("gpt-4.1", []Option{WithMaxTokens(-1), WithModel("")})
	assert.Equal(t, "gpt-4.1", cfg.modelName)
	assert.Equal(t, 4000, cfg.maxTokens)
	assert.Equal(t, 30, cfg.apiTimeout)
	assert.NotNil(t, cfg.httpClient)
}
