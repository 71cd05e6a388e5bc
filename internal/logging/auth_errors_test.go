// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"net/http"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"

	apperrors "ragdash/cli/internal/errors"
)

func TestFormatAuthError(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing code",
			err:  apperrors.ErrMissingAuthorizationCode,
			want: "without an authorization code",
		},
		{
			name: "rejected code",
			err:  apperrors.New(apperrors.TokenExchangeFailed, "rejected").WithStatus(http.StatusUnauthorized),
			want: "can only be used once",
		},
		{
			name: "server error",
			err:  apperrors.New(apperrors.TokenExchangeFailed, "rejected").WithStatus(http.StatusBadGateway),
			want: "answered with 502",
		},
		{
			name: "unreachable",
			err:  apperrors.Wrap(apperrors.TokenExchangeFailed, "request failed", errors.New("dial tcp: connection refused")),
			want: "could not be reached",
		},
		{
			name: "abandoned",
			err:  apperrors.ErrLoginAbandoned,
			want: "discarded",
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: "Something unexpected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatAuthError(tt.err)
			require.Contains(t, out, tt.want)
			require.Contains(t, out, "ragdash login")
		})
	}
}

func TestFormatAuthErrorMasksDetails(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	err := apperrors.Wrap(apperrors.TokenExchangeFailed, "request failed", errors.New(`body {"code":"abc123"}`))
	out := FormatAuthError(err)
	require.NotContains(t, out, "abc123")
	require.Equal(t, "", FormatAuthError(nil))
}
