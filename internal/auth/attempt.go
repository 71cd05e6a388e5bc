// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	apperrors "ragdash/cli/internal/errors"
)

// Phase is where a single login attempt stands.
// Phases are local to the attempt and never stored in the session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingRedirect
	PhaseExchanging
	PhaseAuthenticated
	// PhaseAbandoned marks an attempt whose owner stopped waiting. An exchange
	// that resolves afterwards is discarded.
	PhaseAbandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingRedirect:
		return "awaiting-redirect"
	case PhaseExchanging:
		return "exchanging"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Attempt is one pass through the SSO handshake.
//
//	Idle -> AwaitingRedirect -> Exchanging -> Authenticated
//	                                       \-> Idle (failure)
//	AwaitingRedirect | Exchanging -> Abandoned
//
// A failed attempt is finished; the user starts a new one.
type Attempt struct {
	c     *Controller
	mu    sync.Mutex
	phase Phase
}

func newAttempt(c *Controller) *Attempt {
	return &Attempt{c: c, phase: PhaseIdle}
}

// Phase returns the attempt's current phase.
func (a *Attempt) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *Attempt) set(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

// Complete exchanges the authorization code from the redirect for a session.
// An empty code fails with MissingAuthorizationCode before any network call.
// A rejected or failed exchange returns TokenExchangeFailed and leaves the
// session untouched; there is no retry.
func (a *Attempt) Complete(ctx context.Context, code string) error {
	a.mu.Lock()
	if a.phase != PhaseAwaitingRedirect {
		p := a.phase
		a.mu.Unlock()
		if p == PhaseAbandoned {
			return apperrors.ErrLoginAbandoned
		}
		return fmt.Errorf("login attempt is %s, not awaiting a redirect", p)
	}
	if strings.TrimSpace(code) == "" {
		a.phase = PhaseIdle
		a.mu.Unlock()
		a.c.log.Warn().Str("kind", string(apperrors.MissingAuthorizationCode)).Msg("redirect carried no authorization code")
		return apperrors.ErrMissingAuthorizationCode
	}
	a.phase = PhaseExchanging
	a.mu.Unlock()

	return a.c.exchange(ctx, a, code)
}

// Fail ends an attempt whose redirect carried an identity-provider error instead of a code.
func (a *Attempt) Fail(reason string) error {
	a.mu.Lock()
	if a.phase == PhaseAwaitingRedirect {
		a.phase = PhaseIdle
	}
	a.mu.Unlock()
	return apperrors.Wrap(apperrors.CallbackFailed, "identity provider returned an error", errors.New(reason))
}

// Abandon gives up on the attempt. A redirect or exchange result that arrives
// later is ignored. Abandoning a finished attempt has no effect.
func (a *Attempt) Abandon() {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.phase {
	case PhaseAwaitingRedirect, PhaseExchanging:
		a.phase = PhaseAbandoned
	}
}
