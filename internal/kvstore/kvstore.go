package kvstore

import (
	"context"
	"sync"
)

// Store is the persistent key-value collaborator the cart and wallet
// write through to. Implementations must make Set durable before
// returning, so a crash after a mutation cannot roll it back.
type Store interface {
	// Get returns the value for key, with found=false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set durably writes the value for key.
	Set(ctx context.Context, key, value string) error
}

// memoryStore implements Store with an in-process map. Used for tests
// and for running without Redis.
type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() Store {
	return &memoryStore{values: make(map[string]string)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
