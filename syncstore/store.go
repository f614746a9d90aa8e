// Package syncstore composes a notification bus and a snapshot reader into
// the subscribe/snapshot contract renderers consume, plus the writer that
// commits, records and publishes.
package syncstore

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/odvcencio/furry-store/bus"
	"github.com/odvcencio/furry-store/state"
)

// Source is the backend side of a store: where the value lives and how to
// read and commit it.
type Source[T any] interface {
	// Scope resolves the current scope. Called once per operation.
	Scope() any
	Key() string
	// Read returns the current value or the fallback. It must not mutate.
	Read() T
	// Commit serializes and stores value.
	Commit(value T) error
}

// Announcer is implemented by sources that tell other execution contexts
// about a commit. Announce runs after the local notice was delivered.
type Announcer interface {
	Announce()
}

// Store is a synchronized external store.
type Store[T any] struct {
	src Source[T]
	bus bus.Bus

	mu    sync.Mutex
	last  T
	known bool
}

var _ state.Store[int] = (*Store[int])(nil)

// New binds src to b.
func New[T any](src Source[T], b bus.Bus) *Store[T] {
	return &Store[T]{src: src, bus: b}
}

// Key returns the store key.
func (s *Store[T]) Key() string {
	return s.src.Key()
}

// Snapshot re-reads the source and records the result as last delivered.
func (s *Store[T]) Snapshot() T {
	value := s.src.Read()
	s.remember(value)
	return value
}

// Get is Snapshot.
func (s *Store[T]) Get() T {
	return s.Snapshot()
}

// Subscribe registers onChange for notices on this store's key. The scope is
// resolved now; later scope changes are not followed. onChange runs after the
// store has re-read the source.
func (s *Store[T]) Subscribe(onChange func()) func() {
	if onChange == nil {
		return func() {}
	}
	return s.bus.Subscribe(s.src.Scope(), s.src.Key(), func() {
		s.Snapshot()
		onChange()
	})
}

// Last returns the last value delivered through Snapshot, a notice or a write.
func (s *Store[T]) Last() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.known
}

// Set commits value and publishes one notice.
func (s *Store[T]) Set(value T) error {
	if err := s.src.Commit(value); err != nil {
		return errors.Wrapf(err, "commit %q", s.src.Key())
	}
	s.remember(value)
	s.publish()
	return nil
}

// Update applies fn to the last delivered value and commits the result.
// Without a delivered value the source is read first.
func (s *Store[T]) Update(fn func(T) T) error {
	if fn == nil {
		return nil
	}
	prev, ok := s.Last()
	if !ok {
		prev = s.Snapshot()
	}
	return s.Set(fn(prev))
}

// Dispatch applies a literal or updater action.
func (s *Store[T]) Dispatch(action Action[T]) error {
	if action.isUpdate {
		return s.Update(action.update)
	}
	return s.Set(action.value)
}

// Setter returns Dispatch as a setValue function.
func (s *Store[T]) Setter() Setter[T] {
	return s.Dispatch
}

// Mutate runs a backend-specific commit, then forgets the last delivered
// value and publishes one notice. A failed commit publishes nothing.
func (s *Store[T]) Mutate(commit func() error) error {
	if commit == nil {
		return nil
	}
	if err := commit(); err != nil {
		return errors.Wrapf(err, "commit %q", s.src.Key())
	}
	s.forget()
	s.publish()
	return nil
}

func (s *Store[T]) publish() {
	s.bus.Publish(s.src.Scope(), s.src.Key())
	if a, ok := s.src.(Announcer); ok {
		a.Announce()
	}
}

func (s *Store[T]) remember(value T) {
	s.mu.Lock()
	s.last = value
	s.known = true
	s.mu.Unlock()
}

func (s *Store[T]) forget() {
	var zero T
	s.mu.Lock()
	s.last = zero
	s.known = false
	s.mu.Unlock()
}
