// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt reports the token's exp claim when the token is a JWT.
// The token is opaque to the client and is never rejected on this basis;
// the value is informational only.
func (st State) ExpiresAt() (time.Time, bool) {
	if !st.IsAuthenticated {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(st.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
