// Package cache defines the key/value store the loader keeps the raw report
// text in. storage.Database provides the persistent implementation.
package cache

import "sync"

// Cache stores raw report text by key
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Memory is an in-process Cache
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

// Get returns the value stored under key
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

// Set stores value under key, replacing any previous value
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Len returns the number of stored keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
