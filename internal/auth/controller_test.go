// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/config"
	apperrors "ragdash/cli/internal/errors"
)

const demoExchangeBody = `{
	"access_token": "tok-1",
	"token_type": "bearer",
	"user": {"email": "demo@example.com", "name": "Demo User", "username": "demouser"}
}`

type stubBackend struct {
	srv   *httptest.Server
	calls atomic.Int32
	api   backend.API
}

func newStubBackend(t *testing.T, handler http.HandlerFunc) *stubBackend {
	t.Helper()
	sb := &stubBackend{}
	sb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sb.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(sb.srv.Close)
	cfg := config.Default().API
	cfg.BaseURL = sb.srv.URL
	sb.api = backend.New(cfg, 5*time.Second, nil)
	return sb
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestController(t *testing.T, be Exchanger, opener BrowserOpener) (*Controller, *Store) {
	t.Helper()
	s := OpenStore(&memStorage{}, zerolog.Nop())
	return NewController(s, be, opener, zerolog.Nop()), s
}

func TestCompleteLoginSuccess(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusOK, demoExchangeBody))
	c, s := newTestController(t, sb.api, nil)

	notified := 0
	s.Subscribe(func(Event) { notified++ })

	require.NoError(t, c.CompleteLogin(context.Background(), "abc123"))
	require.Equal(t, State{
		IsAuthenticated: true,
		User:            &User{Email: "demo@example.com", Name: "Demo User", Username: "demouser"},
		Token:           "tok-1",
	}, s.State())
	require.Equal(t, 1, notified)
	require.EqualValues(t, 1, sb.calls.Load())
}

func TestCompleteLoginMissingCode(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusOK, demoExchangeBody))
	c, s := newTestController(t, sb.api, nil)
	s.authenticate(demoUser, "tok-prior")
	before := s.State()

	notified := 0
	s.Subscribe(func(Event) { notified++ })

	for _, code := range []string{"", "   "} {
		err := c.CompleteLogin(context.Background(), code)
		require.ErrorIs(t, err, apperrors.ErrMissingAuthorizationCode)
	}
	require.Zero(t, sb.calls.Load(), "no network call")
	require.Equal(t, before, s.State())
	require.Zero(t, notified)
}

func TestCompleteLoginExchangeFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{name: "unauthorized", handler: respond(http.StatusUnauthorized, `{"detail":"bad code"}`), wantStatus: http.StatusUnauthorized},
		{name: "server error", handler: respond(http.StatusInternalServerError, `{"detail":"boom"}`), wantStatus: http.StatusInternalServerError},
		{name: "incomplete body", handler: respond(http.StatusOK, `{"access_token":"tok-1"}`)},
		{name: "not json", handler: respond(http.StatusOK, `<html>`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := newStubBackend(t, tt.handler)
			c, s := newTestController(t, sb.api, nil)

			err := c.CompleteLogin(context.Background(), "bad-code")
			require.ErrorIs(t, err, apperrors.ErrTokenExchangeFailed)
			require.Equal(t, Unauthenticated(), s.State())
			require.EqualValues(t, 1, sb.calls.Load(), "no retry")

			var e *apperrors.E
			require.ErrorAs(t, err, &e)
			require.Equal(t, tt.wantStatus, e.Status)
		})
	}
}

func TestCompleteLoginTransportFailure(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusOK, demoExchangeBody))
	sb.srv.Close()
	c, s := newTestController(t, sb.api, nil)

	err := c.CompleteLogin(context.Background(), "abc123")
	require.ErrorIs(t, err, apperrors.ErrTokenExchangeFailed)
	require.Equal(t, Unauthenticated(), s.State())
}

func TestCompleteLoginFailureKeepsPriorSession(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusUnauthorized, `{}`))
	c, s := newTestController(t, sb.api, nil)
	s.authenticate(demoUser, "tok-prior")

	require.Error(t, c.CompleteLogin(context.Background(), "used-code"))
	require.Equal(t, "tok-prior", s.State().Token)
}

func TestBeginLoginOpensBrowser(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusOK, demoExchangeBody))
	var opened string
	c, s := newTestController(t, sb.api, OpenerFunc(func(url string) error {
		opened = url
		return nil
	}))

	a, err := c.BeginLogin(context.Background())
	require.NoError(t, err)
	require.Equal(t, sb.srv.URL+"/api/auth/login", opened)
	require.Equal(t, PhaseAwaitingRedirect, a.Phase())
	require.Zero(t, sb.calls.Load(), "navigation is not a background request")

	require.NoError(t, a.Complete(context.Background(), "abc123"))
	require.Equal(t, PhaseAuthenticated, a.Phase())
	require.True(t, s.IsAuthenticated())

	err = a.Complete(context.Background(), "abc123")
	require.Error(t, err, "a finished attempt cannot be completed again")
}

func TestBeginLoginOpenerFailureStillAwaits(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusOK, demoExchangeBody))
	c, _ := newTestController(t, sb.api, OpenerFunc(func(string) error {
		return errors.New("xdg-open: not found")
	}))

	a, err := c.BeginLogin(context.Background())
	require.Error(t, err)
	require.Equal(t, PhaseAwaitingRedirect, a.Phase())
}

func TestAttemptFailedExchangeReturnsToIdle(t *testing.T) {
	sb := newStubBackend(t, respond(http.StatusUnauthorized, `{}`))
	c, _ := newTestController(t, sb.api, OpenerFunc(func(string) error { return nil }))

	a, err := c.BeginLogin(context.Background())
	require.NoError(t, err)
	require.Error(t, a.Complete(context.Background(), "bad-code"))
	require.Equal(t, PhaseIdle, a.Phase())

	err = a.Complete(context.Background(), "another")
	require.Error(t, err)
	require.EqualValues(t, 1, sb.calls.Load(), "failed attempt is terminal")
}

func TestAttemptMissingCodeReturnsToIdle(t *testing.T) {
	c, _ := newTestController(t, fakeExchanger{}, OpenerFunc(func(string) error { return nil }))

	a, _ := c.BeginLogin(context.Background())
	require.ErrorIs(t, a.Complete(context.Background(), ""), apperrors.ErrMissingAuthorizationCode)
	require.Equal(t, PhaseIdle, a.Phase())
}

func TestAttemptFail(t *testing.T) {
	c, s := newTestController(t, fakeExchanger{}, OpenerFunc(func(string) error { return nil }))

	a, _ := c.BeginLogin(context.Background())
	err := a.Fail("access_denied")
	require.ErrorIs(t, err, apperrors.ErrCallbackFailed)
	require.Contains(t, err.Error(), "access_denied")
	require.Equal(t, PhaseIdle, a.Phase())
	require.False(t, s.IsAuthenticated())
}

func TestFailLoginLeavesSession(t *testing.T) {
	c, s := newTestController(t, fakeExchanger{}, nil)
	s.authenticate(demoUser, "tok-prior")

	err := c.FailLogin("access_denied: user cancelled")
	require.ErrorIs(t, err, apperrors.ErrCallbackFailed)
	require.Equal(t, "tok-prior", s.State().Token)
}

func TestAbandonedExchangeIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})
	sb := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		respond(http.StatusOK, demoExchangeBody)(w, r)
	})
	c, s := newTestController(t, sb.api, OpenerFunc(func(string) error { return nil }))

	notified := 0
	s.Subscribe(func(Event) { notified++ })

	a, err := c.BeginLogin(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Complete(context.Background(), "abc123") }()

	<-arrived
	assert.Equal(t, PhaseExchanging, a.Phase())
	a.Abandon()
	close(release)

	require.ErrorIs(t, <-done, apperrors.ErrLoginAbandoned)
	require.Equal(t, PhaseAbandoned, a.Phase())
	require.Equal(t, Unauthenticated(), s.State())
	require.Zero(t, notified)
}

func TestAbandonBeforeRedirect(t *testing.T) {
	c, _ := newTestController(t, fakeExchanger{}, OpenerFunc(func(string) error { return nil }))

	a, _ := c.BeginLogin(context.Background())
	a.Abandon()
	require.ErrorIs(t, a.Complete(context.Background(), "abc123"), apperrors.ErrLoginAbandoned)
}

func TestAbandonAfterSuccessIsNoop(t *testing.T) {
	c, s := newTestController(t, fakeExchanger{}, OpenerFunc(func(string) error { return nil }))

	a, _ := c.BeginLogin(context.Background())
	require.NoError(t, a.Complete(context.Background(), "abc123"))
	a.Abandon()
	require.Equal(t, PhaseAuthenticated, a.Phase())
	require.True(t, s.IsAuthenticated())
}

func TestLogoutIsIdempotentAndAlwaysNotifies(t *testing.T) {
	c, s := newTestController(t, fakeExchanger{}, nil)
	require.NoError(t, c.CompleteLogin(context.Background(), "abc123"))

	notified := 0
	s.Subscribe(func(Event) { notified++ })

	c.Logout()
	once := s.State()
	c.Logout()

	require.Equal(t, once, s.State())
	require.Equal(t, Unauthenticated(), s.State())
	require.Equal(t, 2, notified)
	require.Empty(t, s.AuthHeader())
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "awaiting-redirect", PhaseAwaitingRedirect.String())
	require.Equal(t, "abandoned", PhaseAbandoned.String())
	require.Equal(t, "phase(42)", Phase(42).String())
}

// fakeExchanger succeeds for every code without a network round trip.
type fakeExchanger struct{}

func (fakeExchanger) LoginURL() string { return "http://backend.invalid/api/auth/login" }

func (fakeExchanger) ExchangeCode(_ context.Context, code string) (*backend.Exchange, error) {
	return &backend.Exchange{
		AccessToken: "tok-" + code,
		User:        &backend.User{Email: "demo@example.com", Name: "Demo User", Username: "demouser"},
	}, nil
}
