package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/google/uuid"
)

type idempotencyEntry struct {
	orderID   uuid.UUID
	expiresAt time.Time
}

type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idempotencyEntry
}

var _ port.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]idempotencyEntry),
	}
}

func (s *IdempotencyStore) Claim(_ context.Context, key string) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.orderID, false, nil
	}
	s.entries[key] = idempotencyEntry{orderID: uuid.Nil, expiresAt: now.Add(s.ttl)}

	return uuid.Nil, true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key string, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{orderID: orderID, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Abandon(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
