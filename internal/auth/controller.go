// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"ragdash/cli/internal/backend"
	apperrors "ragdash/cli/internal/errors"
)

// Exchanger is the slice of the backend API the login flow needs.
type Exchanger interface {
	LoginURL() string
	ExchangeCode(ctx context.Context, code string) (*backend.Exchange, error)
}

// BrowserOpener performs a full browser navigation to a URL.
type BrowserOpener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to BrowserOpener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Controller drives the SSO redirect handshake and the logout transition.
// It is the only writer of the Store.
type Controller struct {
	store  *Store
	be     Exchanger
	opener BrowserOpener
	log    zerolog.Logger
}

// NewController constructs a Controller over store.
func NewController(store *Store, be Exchanger, opener BrowserOpener, log zerolog.Logger) *Controller {
	return &Controller{
		store:  store,
		be:     be,
		opener: opener,
		log:    log.With().Str("component", "login").Logger(),
	}
}

// Store returns the session store this controller writes to.
func (c *Controller) Store() *Store { return c.store }

// LoginURL is where BeginLogin sends the browser.
func (c *Controller) LoginURL() string { return c.be.LoginURL() }

// BeginLogin starts a login attempt by navigating the browser to the backend's
// SSO endpoint. The attempt awaits the redirect even when the browser could not
// be opened; the returned error lets the caller print LoginURL for manual use.
func (c *Controller) BeginLogin(ctx context.Context) (*Attempt, error) {
	a := newAttempt(c)
	a.set(PhaseAwaitingRedirect)

	url := c.be.LoginURL()
	c.log.Debug().Str("url", url).Msg("opening browser for sign-in")
	if c.opener == nil {
		return a, errors.New("no browser opener configured")
	}
	if err := c.opener.Open(url); err != nil {
		c.log.Debug().Err(err).Msg("browser did not open")
		return a, err
	}
	return a, nil
}

// CompleteLogin finishes a login whose redirect arrived outside of a BeginLogin
// attempt in this process, e.g. a redirect URL pasted by the user.
func (c *Controller) CompleteLogin(ctx context.Context, code string) error {
	a := newAttempt(c)
	a.set(PhaseAwaitingRedirect)
	return a.Complete(ctx, code)
}

// FailLogin records an out-of-band redirect that carried an identity-provider
// error. The session is not touched.
func (c *Controller) FailLogin(reason string) error {
	a := newAttempt(c)
	a.set(PhaseAwaitingRedirect)
	return a.Fail(reason)
}

// Logout resets the session to logged out. It always succeeds, notifies
// subscribers every time it is called, and makes no network call.
func (c *Controller) Logout() {
	c.store.reset()
	c.log.Info().Msg("signed out")
}

// exchange trades code for a session and applies it unless a is abandoned.
func (c *Controller) exchange(ctx context.Context, a *Attempt, code string) error {
	ex, err := c.be.ExchangeCode(ctx, code)

	a.mu.Lock()
	if a.phase == PhaseAbandoned {
		a.mu.Unlock()
		c.log.Debug().Msg("exchange finished after the attempt was abandoned; discarding result")
		return apperrors.ErrLoginAbandoned
	}
	if err != nil {
		a.phase = PhaseIdle
		a.mu.Unlock()
		wrapped := exchangeError(err)
		c.log.Warn().Err(wrapped).Msg("token exchange failed")
		return wrapped
	}
	a.phase = PhaseAuthenticated
	a.mu.Unlock()

	user := User{Email: ex.User.Email, Name: ex.User.Name, Username: ex.User.Username}
	c.store.authenticate(user, ex.AccessToken)
	c.log.Info().Str("user", firstNonEmpty(user.Email, user.Username)).Msg("signed in")
	return nil
}

// exchangeError classifies a backend failure as TokenExchangeFailed, keeping the status.
func exchangeError(err error) error {
	var se *backend.StatusError
	if errors.As(err, &se) {
		return apperrors.Wrap(apperrors.TokenExchangeFailed, "backend rejected the authorization code", err).WithStatus(se.Code)
	}
	if errors.Is(err, backend.ErrMalformedExchange) {
		return apperrors.Wrap(apperrors.TokenExchangeFailed, "backend returned an incomplete session", err)
	}
	return apperrors.Wrap(apperrors.TokenExchangeFailed, "token exchange request failed", err)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
