// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"ragdash/cli/internal/config"
)

// RequestIDHeader carries a fresh id on every request for backend log correlation.
const RequestIDHeader = "X-Request-ID"

// userAgent identifies the CLI to the backend.
const userAgent = "ragdash-cli/1.0"

// HTTP implements API client over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:3000")
	baseURL string
	// endpoints contains the URL paths for various API endpoints
	endpoints config.Endpoints
	// client is the underlying HTTP client; its Timeout is the only deadline applied
	client *http.Client
	// creds supplies the Authorization header; may be nil
	creds HeaderSource
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Code, e.Body)
}

// newHTTP creates a new HTTP client with the given base URL and endpoints.
func newHTTP(baseURL string, endpoints config.Endpoints, client *http.Client, creds HeaderSource) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    client,
		creds:     creds,
	}
}

// LoginURL returns the absolute URL of the SSO login endpoint.
func (h *HTTP) LoginURL() string {
	return h.baseURL + h.endpoints.Login
}

// setStandardHeaders applies headers common to every request.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
}

// setAuthHeaders copies the credential headers onto req.
func (h *HTTP) setAuthHeaders(req *http.Request) {
	if h.creds == nil {
		return
	}
	for k, v := range h.creds.AuthHeader() {
		req.Header.Set(k, v)
	}
}

// doJSON sends a request with an optional JSON body and decodes a JSON response into out.
// Non-2xx answers become *StatusError.
func (h *HTTP) doJSON(ctx context.Context, op, method, path string, in any, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		h.setAuthHeaders(req)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
