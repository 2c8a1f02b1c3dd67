package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/prompt"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	var (
		inputErr *prompt.InvalidInputError
		fieldErr *document.FieldError
		bodyErr  *badRequestError
		rateErr  *llm.RateLimitError
	)
	switch {
	case errors.As(err, &inputErr), errors.As(err, &fieldErr), errors.As(err, &bodyErr),
		errors.Is(err, suggestion.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests
	case errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, suggestion.ErrNoPendingSuggestion), errors.Is(err, suggestion.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	l := requestLogger(r.Context())
	if status >= http.StatusInternalServerError {
		l.Errorw("request failed", "error", err)
	} else {
		l.Warnw("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
