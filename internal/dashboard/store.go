// Package dashboard provides the client-side layer for a dashboard frontend:
// an authenticated API client, observable value stores and the summary
// arithmetic the overview widgets render.
package dashboard

import "sync"

// Store holds an observable value. Readers subscribe for change
// notifications; asynchronous loaders coordinate through sequence tokens so
// that a slow, stale fetch can never overwrite fresher data.
type Store[T any] struct {
	mu      sync.Mutex
	value   T
	seq     uint64
	subs    map[int]func(T)
	nextSub int
}

// NewStore creates a store holding initial.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set writes v directly and notifies subscribers. It also invalidates every
// fetch still in flight: their Complete calls will be dropped.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.seq++
	s.value = v
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn to run on every subsequent change. The returned
// function removes the subscription.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Begin marks the start of an asynchronous load and returns its token.
func (s *Store[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Complete applies the result of the load identified by seq. It reports
// whether the value was accepted: results of loads older than the latest
// Begin or Set are dropped, so the latest-started fetch always wins.
func (s *Store[T]) Complete(seq uint64, v T) bool {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return false
	}
	s.value = v
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return true
}

// snapshotSubs copies the subscriber list. Callers must hold mu; the copy is
// invoked after unlocking so a callback can safely re-enter the store.
func (s *Store[T]) snapshotSubs() []func(T) {
	out := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
