package repository

import (
	"context"
	"sync"
)

// Store is the key/value seam the in-memory repositories are built on.
// Get reports false when the key is absent.
type Store[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool, error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) (bool, error)
	List(ctx context.Context, match func(V) bool) ([]V, error)
}

type memoryStore[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewMemoryStore returns a process-local Store. Values are held by value, so
// callers get copies and never alias what is stored.
func NewMemoryStore[K comparable, V any]() Store[K, V] {
	return &memoryStore[K, V]{items: make(map[K]V)}
}

func (s *memoryStore[K, V]) Get(_ context.Context, key K) (V, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok, nil
}

func (s *memoryStore[K, V]) Set(_ context.Context, key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[key] = value
	return nil
}

func (s *memoryStore[K, V]) Delete(_ context.Context, key K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return false, nil
	}
	delete(s.items, key)
	return true, nil
}

func (s *memoryStore[K, V]) List(_ context.Context, match func(V) bool) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]V, 0)
	for _, v := range s.items {
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}
