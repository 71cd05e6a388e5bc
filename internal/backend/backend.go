// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the dashboard backend.
// It defines the API contract for the SSO code exchange, session validation, and the
// authenticated calls the CLI makes on the user's behalf.
// The package includes both interface definitions and HTTP-based implementations.
package backend

import "context"

// User is the profile the backend returns alongside an access token.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Exchange is the successful result of trading an authorization code for a token.
type Exchange struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

// Health is the payload of the health endpoint.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

// Identity is what the backend reports for the bearer of a token.
type Identity struct {
	Username string `json:"username"`
}

// HeaderSource supplies credentials for outbound requests.
// The session store is the only production implementation.
type HeaderSource interface {
	AuthHeader() map[string]string
}

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// LoginURL is the full-page navigation target that starts SSO.
	LoginURL() string
	// ExchangeCode trades a single-use authorization code for an access token and profile.
	// No retry is attempted.
	ExchangeCode(ctx context.Context, code string) (*Exchange, error)
	// Me asks the backend who the current credentials belong to.
	Me(ctx context.Context) (*Identity, error)
	// Health checks backend availability.
	Health(ctx context.Context) (*Health, error)
	// Chat sends a prompt and returns the first completion.
	Chat(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Search returns the knowledge-base chunks most similar to query.
	Search(ctx context.Context, query string, topK int) (*SearchResponse, error)
	// ProcessDocuments asks the backend to rebuild its knowledge-base index.
	ProcessDocuments(ctx context.Context) (*ProcessResult, error)
	// DocumentCount reports how many chunks are indexed.
	DocumentCount(ctx context.Context) (int, error)
}
