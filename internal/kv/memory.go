package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	maxBytes int
}

// NewMemory returns an empty in-memory store.
func NewMemory(maxBytes int) *Memory {
	return &Memory{data: map[string]string{}, maxBytes: maxBytes}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := checkQuota(m.maxBytes, value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }
