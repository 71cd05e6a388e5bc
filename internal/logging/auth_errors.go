// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pterm/pterm"

	apperrors "ragdash/cli/internal/errors"
)

// FormatAuthError formats a login failure in a user-friendly way.
// The message is chosen from the error's Kind; technical details are masked.
func FormatAuthError(err error) string {
	if err == nil {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Authentication failed"))
	builder.WriteString("\n\n")

	switch apperrors.KindOf(err) {
	case apperrors.MissingAuthorizationCode:
		builder.WriteString("The sign-in page sent you back without an authorization code.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • The sign-in was cancelled in the browser\n")
		builder.WriteString("  • The redirect URL was copied incompletely\n")

	case apperrors.TokenExchangeFailed:
		builder.WriteString("The dashboard backend did not accept the authorization code.\n")
		builder.WriteString(exchangeHint(err))

	case apperrors.CallbackFailed:
		builder.WriteString("The identity provider reported an error during sign-in.\n")
		builder.WriteString("Check that your account is allowed to use the dashboard.\n")

	case apperrors.LoginAbandoned:
		builder.WriteString("The sign-in was not finished in time and has been discarded.\n")

	default:
		builder.WriteString("Something unexpected interrupted the sign-in.\n")
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'ragdash login' to start again"))
	builder.WriteString("\n")

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))

	return builder.String()
}

func exchangeHint(err error) string {
	var e *apperrors.E
	if !errors.As(err, &e) || e.Status == 0 {
		return "The backend could not be reached. Check your network and RAGDASH_API_URL.\n"
	}
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusBadRequest:
		return "Authorization codes can only be used once and expire quickly.\n"
	case e.Status >= 500:
		return fmt.Sprintf("The backend answered with %d; this is a server-side problem.\n", e.Status)
	default:
		return fmt.Sprintf("The backend answered with status %d.\n", e.Status)
	}
}

// PresentAuthError displays a formatted login failure.
func PresentAuthError(err error) {
	fmt.Println()
	fmt.Println(FormatAuthError(err))
	fmt.Println()
}

