// Package server exposes the editing flow and the document store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
)

// Config carries the collaborators and limits of a Server.
type Config struct {
	LLM            llm.LLM
	Store          document.Store
	Suggestions    *suggestion.Manager
	SystemPrompt   string
	RequestsPerSec int
	Burst          int
	RequestTimeout time.Duration
}

type Server struct {
	llm            llm.LLM
	store          document.Store
	suggestions    *suggestion.Manager
	systemPrompt   string
	requestTimeout time.Duration
	limiter        *RateLimiter
	schemas        *schemas
}

// New builds a server. Background work stops when ctx is done.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.LLM == nil {
		return nil, errors.New("llm client required")
	}
	if cfg.Store == nil {
		return nil, errors.New("document store required")
	}
	if cfg.Suggestions == nil {
		return nil, errors.New("suggestion manager required")
	}

	compiled, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	rps, burst := cfg.RequestsPerSec, cfg.Burst
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &Server{
		llm:            cfg.LLM,
		store:          cfg.Store,
		suggestions:    cfg.Suggestions,
		systemPrompt:   cfg.SystemPrompt,
		requestTimeout: timeout,
		limiter:        NewRateLimiter(ctx, rps, burst),
		schemas:        compiled,
	}, nil
}

// Routes returns the HTTP handler of the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("POST /api/ai/edit", s.limiter.Middleware(http.HandlerFunc(s.handleEdit)))

	mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", s.handlePatchDocument)

	mux.HandleFunc("GET /api/documents/{id}/fields/{field}/suggestion", s.handleGetSuggestion)
	mux.Handle("POST /api/documents/{id}/fields/{field}/suggestion/events",
		s.limiter.Middleware(http.HandlerFunc(s.handleSuggestionEvent)))

	return requestIDMiddleware(logMiddleware(mux))
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
