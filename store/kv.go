// Package store provides storage backends for the funnel tracking API:
// key-value stores backing visitor identity and funnel history, the
// dashboard user store (PostgreSQL) and the analytics store (ClickHouse).
package store

import (
	"strings"
	"sync"
)

// KV is the persistence contract the tracker relies on for identity, funnel
// history and the page-start marker. Implementations differ only in
// lifetime: the in-memory store is session-scoped and dies with the session,
// the SQLite/Postgres stores are durable across sessions.
//
// Lookups never fail: a backend error degrades to "absent" so tracking can
// continue.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Clear()
}

// MemoryKV is a session-scoped in-memory KV store.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryKV) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MemoryKV) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
}

// ScopedKV prefixes every key with a namespace, giving each visitor its own
// slice of a shared durable backend.
type ScopedKV struct {
	backend KV
	prefix  string
}

// Scoped wraps backend so that all keys are namespaced under scope.
func Scoped(backend KV, scope string) *ScopedKV {
	return &ScopedKV{backend: backend, prefix: scope + ":"}
}

func (s *ScopedKV) Get(key string) (string, bool) { return s.backend.Get(s.prefix + key) }
func (s *ScopedKV) Set(key, value string)         { s.backend.Set(s.prefix+key, value) }
func (s *ScopedKV) Delete(key string)             { s.backend.Delete(s.prefix + key) }

// Clear removes only keys within this scope when the backend supports
// prefix enumeration; otherwise it is a no-op.
func (s *ScopedKV) Clear() {
	type prefixClearer interface{ ClearPrefix(prefix string) }
	if pc, ok := s.backend.(prefixClearer); ok {
		pc.ClearPrefix(s.prefix)
	}
}

// ClearPrefix removes all in-memory keys under the given prefix.
func (m *MemoryKV) ClearPrefix(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			delete(m.values, k)
		}
	}
}
