// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the client-side session: the Store that holds "is the user
// logged in" truth and persists it, and the Controller that drives the SSO redirect
// handshake which is the only way that truth becomes true.
//
// The session is a single State value. It changes through exactly two transitions,
// a successful code exchange and a logout, and every change is written to durable
// storage in full before subscribers hear about it.
package auth

// User is the profile attached to an authenticated session.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// State is the session as observed by the rest of the client.
// IsAuthenticated is true exactly when both Token and User are present.
type State struct {
	IsAuthenticated bool
	User            *User
	Token           string
}

// Unauthenticated returns the logged-out default.
func Unauthenticated() State {
	return State{}
}

// normalize enforces IsAuthenticated == (Token != "" && User != nil).
// Anything short of a complete authenticated record collapses to the default,
// so a half-cleared session can never be observed as logged in.
func normalize(st State) State {
	if !st.IsAuthenticated || st.Token == "" || st.User == nil {
		return Unauthenticated()
	}
	u := *st.User
	return State{IsAuthenticated: true, User: &u, Token: st.Token}
}

// clone returns a copy that shares no memory with st.
func (st State) clone() State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
