package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zgw/pkg/platform/sentinel"
)

// InMemory is the test double for the outbox store.
type InMemory struct {
	mu    sync.Mutex
	items map[uuid.UUID]*OutboxItem
	order []uuid.UUID
}

func NewInMemory() *InMemory {
	return &InMemory{items: map[uuid.UUID]*OutboxItem{}}
}

func (s *InMemory) Enqueue(_ context.Context, item OutboxItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := item
	s.items[item.ID] = &copied
	s.order = append(s.order, item.ID)
	return nil
}

func (s *InMemory) ClaimPending(_ context.Context, limit int) ([]OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OutboxItem
	for _, id := range s.order {
		if len(out) >= limit {
			break
		}
		if item := s.items[id]; item.Status == StatusPending {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *InMemory) MarkDelivered(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	now := time.Now()
	item.Status = StatusDelivered
	item.DeliveredAt = &now
	return nil
}

func (s *InMemory) MarkFailed(_ context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.Attempts = attempts
	item.LastError = lastError
	if terminal {
		item.Status = StatusFailed
	}
	return nil
}

func (s *InMemory) ListFailed(_ context.Context) ([]OutboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OutboxItem
	for _, id := range s.order {
		if item := s.items[id]; item.Status == StatusFailed {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *InMemory) Requeue(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	item.Status = StatusPending
	item.Attempts = 0
	item.LastError = ""
	return nil
}

// Get looks up one item, for test assertions.
func (s *InMemory) Get(id uuid.UUID) (OutboxItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return OutboxItem{}, false
	}
	return *item, true
}
