package server

import (
	"bytes"
	"context"
	"net/http"

	"github.com/bitrise-io/docs-ai-assistant/diff"
	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/suggestion"
	"github.com/yuin/goldmark"
)

// editResponse carries the revised text and, in Diff, its changed portion.
type editResponse struct {
	Text     string         `json:"text"`
	Diff     string         `json:"diff"`
	Segments []diff.Segment `json:"segments"`
}

type createDocumentRequest struct {
	Kind   document.Kind     `json:"kind"`
	Fields document.FieldSet `json:"fields"`
}

type patchDocumentRequest struct {
	Fields document.FieldSet `json:"fields"`
}

type snapshotResponse struct {
	suggestion.Snapshot
	ChangedPortionHTML string `json:"changedPortionHtml,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEdit runs one stateless revision and returns the full text with its diff.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req suggestion.EditRequest
	if err := decodeBody(w, r, s.schemas.edit, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	res, err := suggestion.Generate(ctx, s.llm, s.systemPrompt, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, editResponse{
		Text:     res.NewFullText,
		Diff:     res.ChangedPortion,
		Segments: res.Segments,
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := decodeBody(w, r, s.schemas.createDocument, &req); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := s.store.Create(r.Context(), req.Kind, req.Fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handlePatchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchDocumentRequest
	if err := decodeBody(w, r, s.schemas.patchDocument, &req); err != nil {
		writeError(w, r, err)
		return
	}

	e, err := s.store.Patch(r.Context(), r.PathValue("id"), req.Fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// resolveUnit checks that the path names an existing entity and one of its fields.
func (s *Server) resolveUnit(r *http.Request) (suggestion.Unit, document.Entity, error) {
	unit := suggestion.Unit{
		DocumentID: r.PathValue("id"),
		Field:      document.Field(r.PathValue("field")),
	}
	e, err := s.store.Get(r.Context(), unit.DocumentID)
	if err != nil {
		return unit, document.Entity{}, err
	}
	if !e.Kind.HasField(unit.Field) {
		return unit, e, &document.FieldError{Kind: e.Kind, Field: unit.Field, Reason: "not a field of this kind"}
	}
	return unit, e, nil
}

func (s *Server) handleGetSuggestion(w http.ResponseWriter, r *http.Request) {
	unit, _, err := s.resolveUnit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	snap := suggestion.Snapshot{Unit: unit, State: suggestion.StateIdle}
	if p, ok := s.suggestions.Peek(unit); ok {
		snap = p.Snapshot()
	}
	s.writeSnapshot(w, r, http.StatusOK, snap)
}

func (s *Server) handleSuggestionEvent(w http.ResponseWriter, r *http.Request) {
	unit, entity, err := s.resolveUnit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var ev suggestion.Event
	if err := decodeBody(w, r, s.schemas.suggestionEvent, &ev); err != nil {
		writeError(w, r, err)
		return
	}
	// The stored text is the default base of a revision.
	if ev.Kind == suggestion.EventSubmit && ev.Payload.FullText == "" {
		ev.Payload.FullText = entity.Fields[unit.Field]
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	snap, err := s.suggestions.For(unit).Dispatch(ctx, ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSnapshot(w, r, http.StatusOK, snap)
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, status int, snap suggestion.Snapshot) {
	resp := snapshotResponse{Snapshot: snap}
	if snap.Result != nil && snap.Result.ChangedPortion != "" {
		html, err := renderMarkdown(snap.Result.ChangedPortion)
		if err != nil {
			requestLogger(r.Context()).Warnw("failed to render changed portion", "error", err)
		} else {
			resp.ChangedPortionHTML = html
		}
	}
	writeJSON(w, status, resp)
}

func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
