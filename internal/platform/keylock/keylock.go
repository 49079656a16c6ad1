// Package keylock serializes work per key while letting distinct keys
// proceed in parallel.
package keylock

import "sync"

// Map hands out one mutex per key. Entries are dropped once no caller holds
// or waits on them, so the map stays proportional to in-flight keys.
type Map[K comparable] struct {
	mu    sync.Mutex
	byKey map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty Map.
func New[K comparable]() *Map[K] {
	return &Map[K]{byKey: make(map[K]*entry)}
}

// Lock blocks until key is free and returns the function that releases it.
func (m *Map[K]) Lock(key K) (unlock func()) {
	m.mu.Lock()
	e, ok := m.byKey[key]
	if !ok {
		e = &entry{}
		m.byKey[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()
			m.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(m.byKey, key)
			}
			m.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited.
func (m *Map[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}
