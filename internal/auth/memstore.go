package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Store = (*MemStore)(nil)

// MemStore implements Store in process memory. It mirrors the relational
// constraints (unique username, append-only log) and backs the HTTP tests.
type MemStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[string]*User
	byID    map[int64]*User
	log     []*AccessEntry
	nextLog int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]*User),
		byID:  make(map[int64]*User),
	}
}

func (s *MemStore) CreateUser(ctx context.Context, u *User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Username]; exists {
		return ErrDuplicateUser
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	s.users[u.Username] = &cp
	s.byID[u.ID] = &cp
	return nil
}

func (s *MemStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) UpdateLastAccess(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	u.LastAccess = &now
	return nil
}

func (s *MemStore) ListUsers(ctx context.Context) ([]*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		cp := *u
		out = append(out, &cp)
	}
	// Newest first, ties broken by descending id for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// SetActive flips the activation flag; the test double for administrative
// deactivation (there is no hard delete).
func (s *MemStore) SetActive(username string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.Active = active
	}
}

func (s *MemStore) AppendAccess(ctx context.Context, e *AccessEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLog++
	e.ID = s.nextLog
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	cp := *e
	s.log = append(s.log, &cp)
	return nil
}

func (s *MemStore) ListAccess(ctx context.Context, limit int) ([]*AccessEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.log)
	if limit > n {
		limit = n
	}
	out := make([]*AccessEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *s.log[i]
		out = append(out, &cp)
	}
	return out, nil
}
