// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ragdash/cli/internal/keychain"
)

// memStorage is an in-memory Storage that can be told to fail.
type memStorage struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memStorage) LoadAuthState() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memStorage) SaveAuthState(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

var demoUser = User{Email: "demo@example.com", Name: "Demo User", Username: "demouser"}

func requireInvariant(t *testing.T, st State) {
	t.Helper()
	require.Equal(t, st.Token != "" && st.User != nil, st.IsAuthenticated)
}

func TestStoreStartsLoadingThenLoggedOut(t *testing.T) {
	s := NewStore(&memStorage{}, zerolog.Nop())
	require.False(t, s.Loaded())
	select {
	case <-s.Ready():
		t.Fatal("ready before Load")
	default:
	}

	s.Load()
	require.True(t, s.Loaded())
	<-s.Ready()
	require.Equal(t, Unauthenticated(), s.State())
	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.CurrentUser())
	require.Empty(t, s.AuthHeader())
}

func TestStoreListenersCalledOncePerMutationInOrder(t *testing.T) {
	s := OpenStore(&memStorage{}, zerolog.Nop())

	var calls []string
	s.Subscribe(func(Event) { calls = append(calls, "a") })
	s.Subscribe(func(Event) { calls = append(calls, "b") })
	s.Subscribe(func(Event) { calls = append(calls, "c") })

	_ = s.State()
	_ = s.IsAuthenticated()
	_ = s.AuthHeader()
	require.Empty(t, calls, "reads never notify")

	s.authenticate(demoUser, "tok-1")
	require.Equal(t, []string{"a", "b", "c"}, calls)

	s.reset()
	require.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, calls)
}

func TestStoreEventCarriesNewState(t *testing.T) {
	s := OpenStore(&memStorage{}, zerolog.Nop())

	var got []State
	s.Subscribe(func(ev Event) { got = append(got, ev.State) })

	s.authenticate(demoUser, "tok-1")
	s.reset()

	require.Len(t, got, 2)
	require.True(t, got[0].IsAuthenticated)
	require.Equal(t, "tok-1", got[0].Token)
	require.Equal(t, &demoUser, got[0].User)
	require.Equal(t, Unauthenticated(), got[1])
}

func TestStoreUnsubscribe(t *testing.T) {
	s := OpenStore(nil, zerolog.Nop())

	var a, b int
	unsubA := s.Subscribe(func(Event) { a++ })
	s.Subscribe(func(Event) { b++ })

	s.reset()
	unsubA()
	unsubA()
	s.reset()

	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
}

func TestStoreReentrantMutationAndSubscription(t *testing.T) {
	s := OpenStore(&memStorage{}, zerolog.Nop())

	var late int
	var seenInside State
	first := true
	s.Subscribe(func(ev Event) {
		if !first {
			return
		}
		first = false
		seenInside = s.State()
		s.Subscribe(func(Event) { late++ })
		s.reset()
	})

	s.authenticate(demoUser, "tok-1")

	require.True(t, seenInside.IsAuthenticated, "listener sees the store already updated")
	require.False(t, s.IsAuthenticated(), "nested logout applied")
	require.Equal(t, 1, late, "listener added during notification sees only later mutations")
}

func TestStoreNestedMutationDeliveredInOrder(t *testing.T) {
	s := OpenStore(&memStorage{}, zerolog.Nop())

	var first []bool
	s.Subscribe(func(ev Event) {
		first = append(first, ev.State.IsAuthenticated)
		if ev.State.IsAuthenticated {
			s.reset()
		}
	})
	var second []bool
	s.Subscribe(func(ev Event) { second = append(second, ev.State.IsAuthenticated) })

	s.authenticate(demoUser, "tok-1")

	require.False(t, s.IsAuthenticated())
	require.Equal(t, []bool{true, false}, first)
	require.Equal(t, []bool{true, false}, second, "each listener sees mutations in the order they happened")
}

func TestStoreConcurrentMutationsDeliveredInOrder(t *testing.T) {
	st := &memStorage{}
	s := OpenStore(st, zerolog.Nop())

	var mu sync.Mutex
	var seen []string
	s.Subscribe(func(ev Event) {
		mu.Lock()
		seen = append(seen, ev.State.Token)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.authenticate(demoUser, "tok-1") }()
		go func() { defer wg.Done(); s.reset() }()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 100, "every mutation is announced once")
	require.Equal(t, s.State().Token, seen[len(seen)-1], "last event matches the store")

	persisted, err := decodeState(st.snapshot())
	require.NoError(t, err)
	require.Equal(t, s.State(), persisted)
}

func TestStorePersistsBeforeNotifying(t *testing.T) {
	st := &memStorage{}
	s := OpenStore(st, zerolog.Nop())

	var persistedAtNotify []byte
	s.Subscribe(func(Event) { persistedAtNotify = st.snapshot() })

	s.authenticate(demoUser, "tok-1")
	require.JSONEq(t, `{
		"isAuthenticated": true,
		"user": {"email": "demo@example.com", "name": "Demo User", "username": "demouser"},
		"token": "tok-1"
	}`, string(persistedAtNotify))

	s.reset()
	require.JSONEq(t, `{"isAuthenticated": false, "user": null, "token": null}`, string(st.snapshot()))
	require.Equal(t, 2, st.saves)
}

func TestStoreWriteFailureKeepsMemoryAndNotifies(t *testing.T) {
	st := &memStorage{saveErr: errors.New("quota exceeded")}
	s := OpenStore(st, zerolog.Nop())

	notified := 0
	s.Subscribe(func(Event) { notified++ })

	s.authenticate(demoUser, "tok-1")
	require.True(t, s.IsAuthenticated())
	require.Equal(t, 1, notified)
	require.Empty(t, st.snapshot())
}

func TestStoreLoadFailuresFallBackToLoggedOut(t *testing.T) {
	tests := []struct {
		name    string
		storage *memStorage
	}{
		{name: "read error", storage: &memStorage{loadErr: errors.New("keyring locked")}},
		{name: "corrupt json", storage: &memStorage{data: []byte(`{"isAuthenticated": tru`)}},
		{name: "wrong shape", storage: &memStorage{data: []byte(`[1,2,3]`)}},
		{name: "token without user", storage: &memStorage{data: []byte(`{"isAuthenticated":true,"user":null,"token":"tok-1"}`)}},
		{name: "user without token", storage: &memStorage{data: []byte(`{"isAuthenticated":true,"user":{"email":"a@b.c"},"token":null}`)}},
		{name: "flag false with credentials", storage: &memStorage{data: []byte(`{"isAuthenticated":false,"user":{"email":"a@b.c"},"token":"tok-1"}`)}},
		{name: "empty", storage: &memStorage{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := OpenStore(tt.storage, zerolog.Nop())
			require.True(t, s.Loaded())
			require.Equal(t, Unauthenticated(), s.State())
		})
	}
}

func TestStoreRoundTripThroughKeychain(t *testing.T) {
	mgr := keychain.NewWithRing(keyring.NewArrayKeyring(nil))

	first := OpenStore(mgr, zerolog.Nop())
	first.authenticate(demoUser, "tok-1")
	want := first.State()

	rebooted := OpenStore(mgr, zerolog.Nop())
	require.Equal(t, want, rebooted.State())

	rebooted.reset()
	again := OpenStore(mgr, zerolog.Nop())
	require.Equal(t, Unauthenticated(), again.State())
}

func TestStoreCorruptKeychainEntry(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: keychain.KeyAuthState, Data: []byte("not json")}})
	s := OpenStore(keychain.NewWithRing(ring), zerolog.Nop())
	require.Equal(t, Unauthenticated(), s.State())
}

func TestStoreInvariantAcrossTransitions(t *testing.T) {
	s := OpenStore(&memStorage{}, zerolog.Nop())
	s.Subscribe(func(ev Event) { requireInvariant(t, ev.State) })

	steps := []func(){
		func() { s.authenticate(demoUser, "tok-1") },
		func() { s.reset() },
		func() { s.reset() },
		func() { s.authenticate(demoUser, "tok-2") },
		func() { s.authenticate(User{Email: "other@example.com"}, "tok-3") },
		func() { s.authenticate(demoUser, "") },
		func() { s.authenticate(demoUser, "tok-4") },
		func() { s.reset() },
	}
	for _, step := range steps {
		step()
		requireInvariant(t, s.State())
	}
}

func TestStoreStateIsACopy(t *testing.T) {
	s := OpenStore(nil, zerolog.Nop())
	s.authenticate(demoUser, "tok-1")

	st := s.State()
	st.User.Email = "mutated@example.com"
	require.Equal(t, "demo@example.com", s.CurrentUser().Email)
}

func TestStoreAuthHeader(t *testing.T) {
	s := OpenStore(nil, zerolog.Nop())
	require.Equal(t, map[string]string{}, s.AuthHeader())

	s.authenticate(demoUser, "tok-1")
	require.Equal(t, map[string]string{"Authorization": "Bearer tok-1"}, s.AuthHeader())
}

func TestStoreMutationBeforeLoadWins(t *testing.T) {
	st := &memStorage{}
	older := OpenStore(st, zerolog.Nop())
	older.authenticate(demoUser, "tok-old")

	s := NewStore(st, zerolog.Nop())
	s.reset()
	s.Load()
	require.Equal(t, Unauthenticated(), s.State())
}
