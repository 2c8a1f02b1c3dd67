package document

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entities in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]Entity
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]Entity),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return clone(e), nil
}

func (s *MemoryStore) Create(_ context.Context, kind Kind, fields FieldSet) (Entity, error) {
	e, err := NewEntity(kind, fields, s.now())
	if err != nil {
		return Entity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
	return clone(e), nil
}

func (s *MemoryStore) Patch(_ context.Context, id string, fields FieldSet) (Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	patched, err := ApplyPatch(e, fields, s.now())
	if err != nil {
		return Entity{}, err
	}
	s.entities[id] = patched
	return clone(patched), nil
}

func clone(e Entity) Entity {
	c := e
	c.Fields = make(map[Field]string, len(e.Fields))
	for f, v := range e.Fields {
		c.Fields[f] = v
	}
	return c
}
