// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can tell a missing authorization code apart
// from a rejected token exchange without string matching.
//
// The package supports wrapping underlying errors while maintaining error kind information.
// errors.Is matches two *E values by Kind, so callers can compare against the
// exported sentinels (ErrMissingAuthorizationCode, ...) after any amount of wrapping.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// MissingAuthorizationCode indicates the SSO redirect returned without a code.
	MissingAuthorizationCode Kind = "missing_authorization_code"
	// TokenExchangeFailed indicates the backend rejected or never answered the code exchange.
	TokenExchangeFailed Kind = "token_exchange_failed"
	// PersistedStateUnreadable indicates the stored session could not be read or parsed.
	PersistedStateUnreadable Kind = "persisted_state_unreadable"
	// PersistedStateWriteFailed indicates the session could not be written to storage.
	PersistedStateWriteFailed Kind = "persisted_state_write_failed"
	// LoginAbandoned indicates an exchange finished after its login attempt was given up.
	LoginAbandoned Kind = "login_abandoned"
	// CallbackFailed indicates the identity provider redirected back with an error.
	CallbackFailed Kind = "callback_failed"
)

// Sentinels for errors.Is comparisons.
var (
	ErrMissingAuthorizationCode = New(MissingAuthorizationCode, "no authorization code in redirect")
	ErrTokenExchangeFailed      = New(TokenExchangeFailed, "token exchange failed")
	ErrLoginAbandoned           = New(LoginAbandoned, "login attempt abandoned")
	ErrCallbackFailed           = New(CallbackFailed, "identity provider returned an error")
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
	// Status is the HTTP status that caused the error, when there was one.
	Status int
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same Kind.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	return ok && t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithStatus returns a copy of e carrying the HTTP status code.
func (e *E) WithStatus(status int) *E {
	c := *e
	c.Status = status
	return &c
}

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
