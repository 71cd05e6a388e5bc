// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrMalformedExchange is returned when a 2xx exchange response lacks a token or user.
var ErrMalformedExchange = errors.New("exchange response missing access_token or user")

// exchangeResponse accepts the documented field names plus the camelCase spelling
// some gateways rewrite them to.
type exchangeResponse struct {
	AccessToken      string `json:"access_token"`
	AccessTokenCamel string `json:"accessToken"`
	TokenType        string `json:"token_type"`
	User             *User  `json:"user"`
}

// ExchangeCode posts { "code": "<code>" } to the token endpoint.
// It is a single request: callers decide what a failure means for the login attempt.
func (h *HTTP) ExchangeCode(ctx context.Context, code string) (*Exchange, error) {
	var out exchangeResponse
	if err := h.doJSON(ctx, "token-exchange", http.MethodPost, h.endpoints.Token, map[string]string{"code": code}, &out, false); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(out.AccessToken)
	if token == "" {
		token = strings.TrimSpace(out.AccessTokenCamel)
	}
	if token == "" || out.User == nil {
		return nil, ErrMalformedExchange
	}
	return &Exchange{AccessToken: token, TokenType: out.TokenType, User: out.User}, nil
}

// Me calls GET /api/auth/me with the current Authorization header.
func (h *HTTP) Me(ctx context.Context) (*Identity, error) {
	var out Identity
	if err := h.doJSON(ctx, "get-me", http.MethodGet, h.endpoints.Me, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}
