// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
)

// Storage is the durable backing for the session.
// Implementations hold one opaque value and overwrite it on every save;
// LoadAuthState returns (nil, nil) when nothing has been saved yet.
// *keychain.Manager is the production implementation.
type Storage interface {
	LoadAuthState() ([]byte, error)
	SaveAuthState(data []byte) error
}

// persisted is the on-disk layout: {"isAuthenticated", "user", "token"}.
// Absent values are written as null.
type persisted struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	Token           *string `json:"token"`
}

// encodeState serializes the full state for an overwrite.
func encodeState(st State) ([]byte, error) {
	p := persisted{IsAuthenticated: st.IsAuthenticated, User: st.User}
	if st.Token != "" {
		tok := st.Token
		p.Token = &tok
	}
	return json.MarshalIndent(p, "", "  ")
}

// decodeState parses stored bytes. Empty input yields the default state.
// The result is normalized, so a record that breaks the invariant loads as logged out.
func decodeState(data []byte) (State, error) {
	if len(data) == 0 {
		return Unauthenticated(), nil
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Unauthenticated(), err
	}
	st := State{IsAuthenticated: p.IsAuthenticated, User: p.User}
	if p.Token != nil {
		st.Token = *p.Token
	}
	return normalize(st), nil
}
