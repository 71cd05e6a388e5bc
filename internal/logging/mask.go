// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes the zerolog setup used by every command, functions for masking
// sensitive information in log messages, and pterm formatting of authentication
// failures for user-friendly display.
//
// The package helps ensure that bearer tokens and authorization codes are not
// accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
)

var (
	reBearer      = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reQueryParam  = regexp.MustCompile(`(?i)([?&](?:code|token|access_token)=)([^&\s#]+)`)
	reJSONToken   = regexp.MustCompile(`(?i)("(?:access_token|token|code)"\s*:\s*")([^"]*)(")`)
	rePassword    = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reEnvSecret   = regexp.MustCompile(`(?i)\b(RAGDASH_KEYRING_PASSWORD|ACCESS_TOKEN)=([^\s;&]+)`)
	reURLUserinfo = regexp.MustCompile(`(?i)(://)([^:/@\s]+):([^@\s]+)(@)`)
)

// Mask replaces sensitive values in the input string with "***".
// Bearer tokens, authorization codes in query strings and JSON bodies,
// secret environment assignments and URL credentials are all covered.
func Mask(s string) string {
	out := s
	out = reBearer.ReplaceAllString(out, "$1***")
	out = reQueryParam.ReplaceAllString(out, "$1***")
	out = reJSONToken.ReplaceAllString(out, "$1***$3")
	out = reEnvSecret.ReplaceAllString(out, "$1=***")
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reURLUserinfo.ReplaceAllString(out, "$1*:*$4")
	return out
}
