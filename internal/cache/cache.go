package cache

import "sync"

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Memo is a plain memoization cache: entries never expire and are replaced
// only when the same key is set again. Suited to the single-user interactive
// case where results are keyed by (source digest, dimension) and a new file
// or dimension simply produces a new key.
type Memo[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewMemo creates an empty memoization cache.
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{items: make(map[string]T)}
}

// Get retrieves a value from the cache
func (m *Memo[T]) Get(key string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

// Set stores a value in the cache
func (m *Memo[T]) Set(key string, data T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
}

// Delete removes a key from the cache
func (m *Memo[T]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Size returns the current number of items in the cache
func (m *Memo[T]) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
