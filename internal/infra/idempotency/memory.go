package idempotency

import (
	"context"
	"sync"
	"time"

	"bookstore-choreography/internal/pkg/clock"
	"bookstore-choreography/internal/usecase/shared"
)

// MemoryStore is used when no Redis address is configured. Expired keys are
// purged lazily on claim.
type MemoryStore struct {
	mu    sync.Mutex
	keys  map[string]time.Time
	ttl   time.Duration
	clock clock.Clock
}

func NewMemoryStore(ttl time.Duration, clk clock.Clock) *MemoryStore {
	return &MemoryStore{keys: map[string]time.Time{}, ttl: ttl, clock: clk}
}

func (s *MemoryStore) TryClaim(_ context.Context, scope, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for k, exp := range s.keys {
		if !exp.After(now) {
			delete(s.keys, k)
		}
	}
	k := redisKey(scope, key)
	if _, ok := s.keys[k]; ok {
		return false, nil
	}
	s.keys[k] = now.Add(s.ttl)
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, redisKey(scope, key))
	return nil
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)
