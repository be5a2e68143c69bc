package memory

import (
	"context"
	"sync"
)

// UsedStore tracks served question IDs for a single process. It backs the
// repeat-avoidance filter when no Redis is configured.
type UsedStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewUsedStore() *UsedStore {
	return &UsedStore{ids: make(map[string]struct{})}
}

func (s *UsedStore) MarkUsed(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return nil
}

func (s *UsedStore) Used(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *UsedStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
	return nil
}
