// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns failures talking to the dashboard backend into
// messages a user can act on.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/logging"
)

// Category groups network failures by what the user can do about them.
type Category int

const (
	Unknown Category = iota
	Timeout
	DNS
	Refused
	TLS
	Unauthorized
	Server
)

// Classify inspects err and reports its Category.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}

	var se *backend.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden:
			return Unauthorized
		case se.Code >= 500:
			return Server
		default:
			return Unknown
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Timeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(strings.ToLower(err.Error()), "connection refused") {
		return Refused
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "tls") || strings.Contains(lower, "certificate") || strings.Contains(lower, "x509") {
		return TLS
	}
	return Unknown
}

// Describe returns the headline and hints for err while doing action
// (e.g. "checking backend health"). The API base URL is shown where it helps.
func Describe(err error, action, baseURL string) (headline string, hints []string) {
	switch Classify(err) {
	case Timeout:
		return fmt.Sprintf("Connection timeout while %s", action), []string{
			"The backend took too long to respond.",
			"Raise the limit with RAGDASH_HTTP_TIMEOUT if the server is just slow.",
		}
	case DNS:
		return fmt.Sprintf("Cannot resolve the backend address while %s", action), []string{
			fmt.Sprintf("Check the host in %s.", baseURL),
			"Set RAGDASH_API_URL or run 'ragdash config init' to change it.",
		}
	case Refused:
		return fmt.Sprintf("Connection refused while %s", action), []string{
			fmt.Sprintf("Nothing is listening at %s.", baseURL),
			"Start the dashboard backend or point RAGDASH_API_URL at a running one.",
		}
	case TLS:
		return fmt.Sprintf("Secure connection failed while %s", action), []string{
			"The backend certificate could not be verified.",
			"Check your system clock and any HTTPS proxy in between.",
		}
	case Unauthorized:
		return fmt.Sprintf("Not authorized while %s", action), []string{
			"Your session was rejected by the backend.",
			"Run 'ragdash login' to sign in again.",
		}
	case Server:
		return fmt.Sprintf("Server error while %s", action), []string{
			"The backend failed to handle the request. Try again in a few minutes.",
		}
	default:
		return fmt.Sprintf("Request failed while %s", action), []string{
			logging.Mask(err.Error()),
		}
	}
}

// FormatNetworkError prints a user-friendly explanation of err and returns it
// wrapped for the caller's exit path.
func FormatNetworkError(err error, action, baseURL string) error {
	if err == nil {
		return nil
	}
	headline, hints := Describe(err, action, baseURL)
	pterm.Error.Println(headline)
	for _, h := range hints {
		pterm.Println("  • " + h)
	}
	pterm.Println()
	return fmt.Errorf("%s: %w", action, err)
}
