package store

import (
	"sync"

	"github.com/scribeapp/scribe-web/pkg/upstream"
)

// Store holds a single reactive value of type T.
type Store[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID uint64
	subs   map[uint64]func(T)
}

// New creates a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value wholesale and notifies every subscriber with
// the new value. Subscribers run synchronously on the caller's
// goroutine, outside the lock.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn to run on every Set. The returned id cancels
// the subscription via Unsubscribe.
func (s *Store[T]) Subscribe(fn func(T)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a subscription. Unknown ids are a no-op.
func (s *Store[T]) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Session bundles the stores one page session mirrors: the current
// user, their notes, and their folders.
type Session struct {
	User    *Store[*upstream.User]
	Notes   *Store[[]upstream.Note]
	Folders *Store[[]upstream.Folder]
}

// NewSession creates an empty store set.
func NewSession() *Session {
	return &Session{
		User:    New[*upstream.User](nil),
		Notes:   New([]upstream.Note(nil)),
		Folders: New([]upstream.Folder(nil)),
	}
}
