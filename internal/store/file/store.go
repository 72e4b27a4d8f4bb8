// Package file keeps session credentials in a JSON state file on disk, one
// entry per key, the way a browser keeps them in local storage.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shopadmin/internal/domain"
	"shopadmin/internal/store"
)

type Store struct {
	path   string
	sealer store.Sealer

	mu sync.Mutex
}

// NewStore returns a store backed by path. sealer may be nil, in which case
// values are written as plain JSON.
func NewStore(path string, sealer store.Sealer) *Store {
	return &Store{path: path, sealer: sealer}
}

func (s *Store) Load(_ context.Context, key string) (domain.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return domain.Credentials{}, err
	}
	value, ok := entries[key]
	if !ok {
		return domain.Credentials{}, store.ErrNotFound
	}
	return store.Decode(value, s.sealer)
}

func (s *Store) Save(_ context.Context, key string, creds domain.Credentials) error {
	value, err := store.Encode(creds, s.sealer)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.write(entries)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.write(entries)
}

func (s *Store) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	entries := make(map[string]string)
	if len(raw) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	return entries, nil
}

// write replaces the state file atomically so a crash mid-save leaves either
// the old pair or the new pair on disk.
func (s *Store) write(entries map[string]string) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
