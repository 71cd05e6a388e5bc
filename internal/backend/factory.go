// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"time"

	"ragdash/cli/internal/config"
)

// New creates a backend API implementation from configuration.
// Every request carries the headers returned by creds.
func New(cfg config.APIConfig, timeout time.Duration, creds HeaderSource) API {
	return newHTTP(cfg.BaseURL, cfg.Endpoints, &http.Client{Timeout: timeout}, creds)
}
