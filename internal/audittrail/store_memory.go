package audittrail

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"zgw/pkg/platform/sentinel"
)

// InMemory is the test double for the audit trail store.
type InMemory struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemory) ListByHoofdObject(_ context.Context, hoofdObject string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.HoofdObject == hoofdObject {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemory) Get(_ context.Context, hoofdObject string, id uuid.UUID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.HoofdObject == hoofdObject && e.UUID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) DeleteByHoofdObject(_ context.Context, hoofdObject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.HoofdObject != hoofdObject {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// All returns every stored entry, for test assertions.
func (s *InMemory) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
