package memory

import (
	"context"
	"sync"

	"shopadmin/internal/domain"
	"shopadmin/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.Credentials
}

func NewStore() *Store {
	return &Store{entries: make(map[string]domain.Credentials)}
}

func (s *Store) Load(_ context.Context, key string) (domain.Credentials, error) {
	s.mu.RLock()
	creds, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || creds.Access() == "" {
		return domain.Credentials{}, store.ErrNotFound
	}
	return creds.Normalize(), nil
}

func (s *Store) Save(_ context.Context, key string, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = creds.Normalize()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
