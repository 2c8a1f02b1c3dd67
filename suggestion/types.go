// Package suggestion drives the per-field lifecycle of an AI suggestion: request,
// side-by-side comparison, then accept or reject.
package suggestion

import (
	"errors"

	"github.com/bitrise-io/docs-ai-assistant/diff"
	"github.com/bitrise-io/docs-ai-assistant/document"
)

// State of a presenter.
type State string

const (
	StateIdle              State = "idle"
	StateRequesting        State = "requesting"
	StateShowingComparison State = "showing_comparison"
)

// EventKind names a user action.
type EventKind string

const (
	EventSubmit EventKind = "submit"
	EventAccept EventKind = "accept"
	EventReject EventKind = "reject"
)

var (
	// ErrNoPendingSuggestion is returned for accept or reject without a suggestion to act on.
	ErrNoPendingSuggestion = errors.New("no pending suggestion")
	// ErrSuperseded is returned to a submit whose result was discarded by a later event.
	ErrSuperseded = errors.New("suggestion superseded by a newer request")
	// ErrUnknownEvent is returned for event kinds the presenter does not handle.
	ErrUnknownEvent = errors.New("unknown event kind")
)

// EditRequest is the input of one revision.
type EditRequest struct {
	Prompt       string `json:"prompt"`
	SelectedText string `json:"selectedText"`
	FullText     string `json:"fullText"`
}

// GenerationResult is a revision waiting for a decision. ChangedPortion is for display only.
type GenerationResult struct {
	NewFullText    string         `json:"newFullText"`
	ChangedPortion string         `json:"changedPortion"`
	Segments       []diff.Segment `json:"segments"`
}

// Event is dispatched to a presenter. Payload is only read for submit.
type Event struct {
	Kind    EventKind   `json:"kind"`
	Payload EditRequest `json:"payload"`
}

// Unit identifies one editable text: a field of a stored entity.
type Unit struct {
	DocumentID string         `json:"documentId"`
	Field      document.Field `json:"field"`
}

// Snapshot is a copy of a presenter's state.
type Snapshot struct {
	Unit    Unit              `json:"unit"`
	State   State             `json:"state"`
	Request *EditRequest      `json:"request,omitempty"`
	Result  *GenerationResult `json:"result,omitempty"`
	// Entity is set after a successful accept.
	Entity *document.Entity `json:"entity,omitempty"`
}
