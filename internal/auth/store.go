// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"sync"

	"github.com/rs/zerolog"

	apperrors "ragdash/cli/internal/errors"
)

// Event is delivered to subscribers after every mutation and carries the new state.
type Event struct {
	State State
}

// Listener receives store events. Listeners run synchronously on the mutating
// goroutine and must not panic; the store does not recover them.
type Listener func(Event)

type subscription struct {
	id uint64
	fn Listener
}

type delivery struct {
	state State
	subs  []subscription
}

// Store is the single source of truth for the session.
//
// A Store starts in a loading phase; Load reads persisted state once and ends it.
// Mutations are serialized, persisted in full, and then announced to subscribers
// in registration order from a snapshot of the subscriber list, so a listener may
// safely mutate the store or (un)subscribe while being notified.
type Store struct {
	mu      sync.Mutex
	state   State
	subs    []subscription
	nextID  uint64
	loaded  bool

	// pending holds notifications in mutation order; draining is set while
	// one goroutine delivers them.
	pending  []delivery
	draining bool
	storage Storage
	log     zerolog.Logger

	loadOnce sync.Once
	ready    chan struct{}
}

// NewStore constructs a store in its loading phase. Call Load to finish booting.
// storage may be nil, in which case the session lives only in memory.
func NewStore(storage Storage, log zerolog.Logger) *Store {
	return &Store{
		state:   Unauthenticated(),
		storage: storage,
		log:     log.With().Str("component", "session").Logger(),
		ready:   make(chan struct{}),
	}
}

// OpenStore constructs a store and loads persisted state.
func OpenStore(storage Storage, log zerolog.Logger) *Store {
	s := NewStore(storage, log)
	s.Load()
	return s
}

// Load reads the persisted session and ends the loading phase.
// Any read or parse failure leaves the store logged out; it never fails start-up.
// Only the first call does any work.
func (s *Store) Load() {
	s.loadOnce.Do(func() {
		st := s.readPersisted()

		s.mu.Lock()
		s.state = st
		s.loaded = true
		s.mu.Unlock()

		close(s.ready)
	})
}

func (s *Store) readPersisted() State {
	if s.storage == nil {
		return Unauthenticated()
	}
	data, err := s.storage.LoadAuthState()
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(apperrors.PersistedStateUnreadable)).Msg("cannot read stored session, starting logged out")
		return Unauthenticated()
	}
	st, err := decodeState(data)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(apperrors.PersistedStateUnreadable)).Msg("stored session is corrupt, starting logged out")
		return Unauthenticated()
	}
	s.log.Debug().Bool("authenticated", st.IsAuthenticated).Int("bytes", len(data)).Msg("session loaded")
	return st
}

// Loaded reports whether the loading phase is over.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Ready is closed when the loading phase ends.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// State returns a copy of the current in-memory session. It performs no I/O.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// IsAuthenticated is shorthand for State().IsAuthenticated.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

// CurrentUser returns the signed-in user, or nil.
func (s *Store) CurrentUser() *User {
	return s.State().User
}

// AuthHeader returns the headers that authenticate an outbound API call:
// empty when logged out, otherwise a single "Authorization: Bearer <token>" entry.
func (s *Store) AuthHeader() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + s.state.Token}
}

// Subscribe registers l and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: l})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// setState applies mutate, re-establishes the invariant, overwrites storage,
// and then notifies every subscriber. A storage failure is logged and ignored:
// the in-memory session stays authoritative for this process.
//
// Notifications are delivered strictly in mutation order. A mutation made by a
// listener, or by another goroutine while a delivery is running, is queued and
// delivered after the current event has reached every subscriber.
func (s *Store) setState(mutate func(*State)) {
	// A transition ends the boot phase; a late Load must not clobber it.
	s.Load()

	s.mu.Lock()
	next := s.state.clone()
	mutate(&next)
	next = normalize(next)
	s.state = next
	s.persist(next)
	s.pending = append(s.pending, delivery{state: next, subs: append([]subscription(nil), s.subs...)})
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	s.drain()
}

// drain delivers queued notifications until none are left.
func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, sub := range d.subs {
			sub.fn(Event{State: d.state.clone()})
		}
	}
}

// persist must be called with s.mu held so writes land in mutation order.
func (s *Store) persist(st State) {
	if s.storage == nil {
		return
	}
	data, err := encodeState(st)
	if err == nil {
		err = s.storage.SaveAuthState(data)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(apperrors.PersistedStateWriteFailed)).Msg("cannot persist session, keeping it in memory only")
	}
}

// authenticate is the successful-exchange transition.
func (s *Store) authenticate(user User, token string) {
	s.setState(func(st *State) {
		st.IsAuthenticated = true
		st.User = &user
		st.Token = token
	})
}

// reset is the logout transition.
func (s *Store) reset() {
	s.setState(func(st *State) {
		*st = Unauthenticated()
	})
}
