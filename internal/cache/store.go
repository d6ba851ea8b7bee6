// Package cache holds the symbol-keyed state shared by the pollers, the
// scheduler and presentation. Every write replaces a whole value; there
// are no cross-key transactions.
//
// Each request that will end in a write takes an issuance stamp from
// Begin before it goes on the wire. Commit drops results whose stamp is
// older than the value already stored for that key, so a slow response
// can never overwrite a newer one.
package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry is a stored value with its issuance stamp.
type Entry[T any] struct {
	Value     T
	Seq       uint64
	UpdatedAt time.Time
}

// CommitFunc observes accepted writes.
type CommitFunc[T any] func(key string, value T)

// Store is a concurrency-safe key/value map with last-issued-wins semantics.
type Store[T any] struct {
	mu        sync.RWMutex
	entries   map[string]Entry[T]
	issued    map[string]uint64
	discarded uint64
	listeners []CommitFunc[T]
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]Entry[T]),
		issued:  make(map[string]uint64),
	}
}

// Begin stamps a new request for key.
func (s *Store[T]) Begin(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[key]++
	return s.issued[key]
}

// Commit stores value for key unless a request issued later has already
// been committed. It reports whether the value was stored.
func (s *Store[T]) Commit(key string, seq uint64, value T) bool {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.Seq > seq {
		s.discarded++
		s.mu.Unlock()
		return false
	}
	s.entries[key] = Entry[T]{Value: value, Seq: seq, UpdatedAt: time.Now()}
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(key, value)
	}
	return true
}

// Put stamps and commits in one step.
func (s *Store[T]) Put(key string, value T) {
	s.Commit(key, s.Begin(key), value)
}

// OnCommit registers fn to run after each accepted write.
func (s *Store[T]) OnCommit(fn CommitFunc[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns the value stored for key.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.Value, ok
}

// Entry returns the stored value with its metadata.
func (s *Store[T]) Entry(key string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Snapshot copies the current values.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]T, len(s.entries))
	for k, e := range s.entries {
		out[k] = e.Value
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (s *Store[T]) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Discarded counts results dropped because a newer one was already stored.
func (s *Store[T]) Discarded() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discarded
}
