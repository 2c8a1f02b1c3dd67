package suggestion

import (
	"context"
	"fmt"
	"sync"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/logger"
)

// Presenter holds at most one suggestion for a unit.
type Presenter struct {
	unit         Unit
	llm          llm.LLM
	store        document.Store
	systemPrompt string

	mu         sync.Mutex
	state      State
	generation uint64
	request    *EditRequest
	result     *GenerationResult
	cancel     context.CancelFunc
}

// New creates an idle presenter for unit.
func New(unit Unit, client llm.LLM, store document.Store, systemPrompt string) *Presenter {
	return &Presenter{
		unit:         unit,
		llm:          client,
		store:        store,
		systemPrompt: systemPrompt,
		state:        StateIdle,
	}
}

// Unit returns the unit the presenter edits.
func (p *Presenter) Unit() Unit {
	return p.unit
}

// Snapshot returns the current state.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Dispatch reduces ev against the current state.
//
// A submit in any state drops the previous suggestion first. The provider call runs
// without the lock; if another event arrives meanwhile the submit returns ErrSuperseded
// and its result is never shown. Every failure leaves the presenter idle.
func (p *Presenter) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	switch ev.Kind {
	case EventSubmit:
		return p.submit(ctx, ev.Payload)
	case EventAccept:
		return p.accept(ctx)
	case EventReject:
		return p.reject()
	default:
		return p.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
}

func (p *Presenter) submit(ctx context.Context, req EditRequest) (Snapshot, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		logger.Debugw("discarding previous suggestion", "document_id", p.unit.DocumentID, "field", p.unit.Field, "state", p.state)
		p.discard()
	}
	p.generation++
	gen := p.generation
	cctx, cancel := context.WithCancel(ctx)
	p.state = StateRequesting
	p.request = &req
	p.result = nil
	p.cancel = cancel
	p.mu.Unlock()

	res, err := Generate(cctx, p.llm, p.systemPrompt, req)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		logger.Debugw("dropping superseded suggestion", "document_id", p.unit.DocumentID, "field", p.unit.Field)
		return p.snapshot(), ErrSuperseded
	}
	if err != nil {
		p.reset()
		return p.snapshot(), err
	}

	p.state = StateShowingComparison
	p.result = &res
	p.cancel = nil
	return p.snapshot(), nil
}

func (p *Presenter) accept(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateShowingComparison {
		return p.snapshot(), ErrNoPendingSuggestion
	}

	fields := document.FieldSet{p.unit.Field: p.result.NewFullText}
	entity, err := p.store.Patch(ctx, p.unit.DocumentID, fields)
	p.reset()
	if err != nil {
		logger.Errorw("failed to store accepted suggestion", "document_id", p.unit.DocumentID, "field", p.unit.Field, "error", err)
		return p.snapshot(), fmt.Errorf("failed to accept suggestion: %w", err)
	}

	logger.Infow("suggestion accepted", "document_id", p.unit.DocumentID, "field", p.unit.Field)
	snap := p.snapshot()
	snap.Entity = &entity
	return snap, nil
}

func (p *Presenter) reject() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return p.snapshot(), ErrNoPendingSuggestion
	}
	p.discard()
	return p.snapshot(), nil
}

// discard drops the current suggestion and invalidates any call in flight.
// Callers hold p.mu.
func (p *Presenter) discard() {
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	p.reset()
}

func (p *Presenter) reset() {
	p.state = StateIdle
	p.request = nil
	p.result = nil
	p.cancel = nil
}

func (p *Presenter) snapshot() Snapshot {
	s := Snapshot{Unit: p.unit, State: p.state}
	if p.request != nil {
		req := *p.request
		s.Request = &req
	}
	if p.result != nil {
		res := *p.result
		res.Segments = append(res.Segments[:0:0], p.result.Segments...)
		s.Result = &res
	}
	return s
}
