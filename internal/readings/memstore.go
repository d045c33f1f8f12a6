package readings

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps readings in memory for tests and local development.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	items  []Reading
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Insert(ctx context.Context, weight float64, at time.Time) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := Reading{ID: s.nextID, Weight: weight, Timestamp: at}
	s.items = append(s.items, r)
	return r, nil
}

func (s *MemStore) Latest(ctx context.Context, limit int) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.items)
	if limit > n {
		limit = n
	}
	out := make([]Reading, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}

func (s *MemStore) Last(ctx context.Context) (*Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return nil, nil
	}
	r := s.items[len(s.items)-1]
	return &r, nil
}
