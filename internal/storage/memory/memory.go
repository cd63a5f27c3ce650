package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/utafrali/storefront-admin/internal/storage"
)

// Storage implements storage.Storage over an in-memory key set. With
// acceptAll every valid key exists, which suits local development where no
// asset store runs.
type Storage struct {
	mu        sync.RWMutex
	keys      map[string]struct{}
	baseURL   string
	acceptAll bool
}

// New creates an empty in-memory store. Only keys added with Put exist.
func New(baseURL string) *Storage {
	return &Storage{keys: make(map[string]struct{}), baseURL: strings.TrimRight(baseURL, "/")}
}

// NewPermissive creates an in-memory store in which every valid key exists.
func NewPermissive(baseURL string) *Storage {
	s := New(baseURL)
	s.acceptAll = true
	return s
}

// Put records key as present.
func (s *Storage) Put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// URL returns baseURL joined with key.
func (s *Storage) URL(_ context.Context, key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", fmt.Errorf("resolve %q: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Exists reports whether key was added or, for a permissive store, is valid.
func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	if err := storage.ValidateKey(key); err != nil {
		return false, nil
	}
	if s.acceptAll {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok, nil
}
