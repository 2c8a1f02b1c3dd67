package suggestion

import (
	"context"
	"sync"
	"time"

	"github.com/bitrise-io/docs-ai-assistant/document"
	"github.com/bitrise-io/docs-ai-assistant/llm"
	"github.com/bitrise-io/docs-ai-assistant/logger"
	"github.com/jellydator/ttlcache/v3"
)

// Manager hands out one presenter per unit. Presenters untouched for the idle TTL
// are evicted together with their pending suggestion.
type Manager struct {
	llm          llm.LLM
	store        document.Store
	systemPrompt string

	mu    sync.Mutex
	cache *ttlcache.Cache[Unit, *Presenter]
}

// NewManager starts the eviction loop. Call Close to stop it.
func NewManager(client llm.LLM, store document.Store, systemPrompt string, idleTTL time.Duration) *Manager {
	c := ttlcache.New[Unit, *Presenter](
		ttlcache.WithTTL[Unit, *Presenter](idleTTL),
	)
	c.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[Unit, *Presenter]) {
		p := item.Value()
		p.mu.Lock()
		if p.state != StateIdle {
			logger.Infow("evicting pending suggestion", "document_id", item.Key().DocumentID, "field", item.Key().Field)
		}
		p.discard()
		p.mu.Unlock()
	})
	go c.Start()

	return &Manager{
		llm:          client,
		store:        store,
		systemPrompt: systemPrompt,
		cache:        c,
	}
}

// For returns the presenter of unit, creating it on first use.
func (m *Manager) For(unit Unit) *Presenter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item := m.cache.Get(unit); item != nil {
		return item.Value()
	}
	p := New(unit, m.llm, m.store, m.systemPrompt)
	m.cache.Set(unit, p, ttlcache.DefaultTTL)
	return p
}

// Peek returns the presenter of unit without creating one or extending its lifetime.
func (m *Manager) Peek(unit Unit) (*Presenter, bool) {
	item := m.cache.Get(unit, ttlcache.WithDisableTouchOnHit[Unit, *Presenter]())
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Len returns the number of live presenters.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// Close stops the eviction loop and discards every pending suggestion.
func (m *Manager) Close() {
	m.cache.Stop()
	m.cache.DeleteAll()
}
