// Package registry provides a memoizing, concurrency-safe map from a
// connection handle to a lazily constructed value bound to it.
//
// The registry guarantees that for a given key at most one successfully
// constructed value is ever recorded: concurrent first-time callers are
// serialized on the registry mutex, so the factory for a key runs once and
// every caller observes the same instance. A failed construction is never
// recorded and the next call for the same key retries it.
package registry

import "sync"

// Factory builds the value bound to key. It must not perform network I/O:
// it runs while the registry lock is held.
type Factory[K comparable, V any] func(key K) (V, error)

// Registry maps keys to values built on first use.
//
// Registry is safe for concurrent use from multiple goroutines.
type Registry[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
}

// New creates an empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{items: make(map[K]V)}
}

// GetOrCreate returns the value stored for key. If none is stored yet,
// factory is invoked once under the registry lock and its result is stored.
// A factory error is returned unchanged and leaves the registry untouched.
func (r *Registry[K, V]) GetOrCreate(key K, factory Factory[K, V]) (V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.items[key]; ok {
		return v, nil
	}

	v, err := factory(key)
	if err != nil {
		var zero V
		return zero, err
	}

	r.items[key] = v
	return v, nil
}

// Get returns the value stored for key without constructing one.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[key]
	return v, ok
}

// Remove evicts key. It reports whether a value was stored.
// The next GetOrCreate for key builds a fresh value.
func (r *Registry[K, V]) Remove(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		return false
	}
	delete(r.items, key)
	return true
}

// Take evicts key and returns the value that was stored, so the caller can
// release it.
func (r *Registry[K, V]) Take(key K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[key]
	if ok {
		delete(r.items, key)
	}
	return v, ok
}

// Len returns the number of stored values.
func (r *Registry[K, V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.items)
}
