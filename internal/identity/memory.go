package identity

import (
	"context"
	"strings"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. Used by tests
// and local development.
type InMemory struct {
	mu    sync.RWMutex
	users map[string]*User
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty user store.
func NewInMemory() *InMemory {
	return &InMemory{users: make(map[string]*User)}
}

func (s *InMemory) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrAlreadyExists
		}
		if u.Email != "" && existing.Email == u.Email {
			return ErrAlreadyExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.ToLower(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email != "" && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
