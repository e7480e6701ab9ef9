package store

import (
	"context"
	"sync"

	"codeberg.org/mutker/wattd/internal/errors"
)

type memoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// NewMemory returns a Store that keeps values in process memory only
func NewMemory() Store {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New().New(ErrInvalidKey)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, errors.New().New(ErrClosed)
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New().New(ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New().New(ErrClosed)
	}
	m.data[key] = value
	return nil
}

func (m *memoryStore) Remove(_ context.Context, key string) error {
	if key == "" {
		return errors.New().New(ErrInvalidKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New().New(ErrClosed)
	}
	delete(m.data, key)
	return nil
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
