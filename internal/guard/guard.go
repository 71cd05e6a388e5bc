// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package guard decides whether a protected route may be rendered for the
// current session. Decisions are pure functions of the session state; the guard
// never reads storage or talks to the backend.
package guard

import (
	"fmt"
	"net/url"
	"strings"

	"ragdash/cli/internal/auth"
)

const (
	// DefaultLoginPath is the login route of the dashboard.
	DefaultLoginPath = "/login"
	// DefaultCallbackPath is where the identity provider sends the browser back.
	DefaultCallbackPath = "/auth/callback"
)

// Kind is the outcome of a guard check.
type Kind int

const (
	// Allow lets the protected content render.
	Allow Kind = iota
	// RedirectToLogin sends the user to the login route, remembering where they were headed.
	RedirectToLogin
	// Pending means the session is still loading and nothing should render yet.
	Pending
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is what the guard concluded for one route.
type Decision struct {
	Kind Kind
	// ReturnPath is the route the user intended to reach. Set only for RedirectToLogin.
	ReturnPath string

	loginPath string
}

// RedirectTarget is the login route to navigate to, carrying the return path
// in its "from" query parameter. It is empty unless the decision redirects.
func (d Decision) RedirectTarget() string {
	if d.Kind != RedirectToLogin {
		return ""
	}
	login := d.loginPath
	if login == "" {
		login = DefaultLoginPath
	}
	if d.ReturnPath == "" {
		return login
	}
	return login + "?" + url.Values{"from": {d.ReturnPath}}.Encode()
}

func (d Decision) String() string {
	if d.Kind == RedirectToLogin {
		return fmt.Sprintf("%s -> %s", d.Kind, d.RedirectTarget())
	}
	return d.Kind.String()
}

// IsRouteAllowed reports whether protected content may render for st.
func IsRouteAllowed(st auth.State) bool {
	return st.IsAuthenticated
}

// Decide returns Allow for an authenticated session and otherwise a redirect
// to the login route that remembers intendedPath.
func Decide(st auth.State, intendedPath string) Decision {
	if IsRouteAllowed(st) {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: RedirectToLogin, ReturnPath: intendedPath, loginPath: DefaultLoginPath}
}

// Source is the read side of the session store the guard needs.
type Source interface {
	State() auth.State
	Loaded() bool
}

// Guard applies Decide to every route except a fixed set of public ones.
type Guard struct {
	loginPath string
	public    map[string]struct{}
}

// New returns a Guard that redirects to loginPath. loginPath and every path in
// public are always allowed.
func New(loginPath string, public ...string) *Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	g := &Guard{loginPath: loginPath, public: map[string]struct{}{loginPath: {}}}
	for _, p := range public {
		g.public[clean(p)] = struct{}{}
	}
	return g
}

// Default returns the dashboard's guard: /login and /auth/callback are public.
func Default() *Guard {
	return New(DefaultLoginPath, DefaultCallbackPath)
}

// Check decides for path. It is Pending until src has finished loading so a
// persisted session is never mistaken for a logged-out one.
func (g *Guard) Check(src Source, path string) Decision {
	if !src.Loaded() {
		return Decision{Kind: Pending}
	}
	if g.IsPublic(path) {
		return Decision{Kind: Allow}
	}
	d := Decide(src.State(), path)
	d.loginPath = g.loginPath
	return d
}

// IsPublic reports whether path is reachable without a session.
func (g *Guard) IsPublic(path string) bool {
	_, ok := g.public[clean(path)]
	return ok
}

// clean drops the query string and any trailing slash.
func clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
