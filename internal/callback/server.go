// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package callback receives the SSO return leg on a loopback HTTP listener.
//
// The identity provider redirects the browser to http://127.0.0.1:<port>/auth/callback
// with either ?code=... or ?error=.... The first such request is handed to the
// login command through Wait; later ones only get a page telling the user the
// login was already handled.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result is what the identity provider sent back.
type Result struct {
	Code             string
	Error            string
	ErrorDescription string
}

// Failed reports whether the provider returned an error instead of a code.
func (r Result) Failed() bool { return r.Error != "" }

// Reason renders the provider error for display.
func (r Result) Reason() string {
	if r.ErrorDescription != "" {
		return r.Error + ": " + r.ErrorDescription
	}
	return r.Error
}

func resultFromQuery(q url.Values) Result {
	return Result{
		Code:             strings.TrimSpace(q.Get("code")),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}

// Parse reads a redirect URL pasted by the user, or a bare authorization code.
func Parse(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, nil
	}
	if !strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		return Result{Code: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("parse redirect URL: %w", err)
	}
	return resultFromQuery(u.Query()), nil
}

// Server is a running loopback listener.
type Server struct {
	srv     *http.Server
	ln      net.Listener
	path    string
	results chan Result
	log     zerolog.Logger
}

// Start listens on addr and serves the callback route at path until Shutdown.
func Start(addr, path string, log zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for SSO callback on %s: %w", addr, err)
	}
	s := &Server{
		ln:      ln,
		path:    path,
		results: make(chan Result, 1),
		log:     log.With().Str("component", "callback").Logger(),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("callback listener stopped")
		}
	}()
	s.log.Debug().Str("addr", ln.Addr().String()).Str("path", path).Msg("waiting for SSO redirect")
	return s, nil
}

// New builds a Server without a listener, for serving Handler directly.
func New(path string, log zerolog.Logger) *Server {
	return &Server{
		path:    path,
		results: make(chan Result, 1),
		log:     log.With().Str("component", "callback").Logger(),
	}
}

// URL is the redirect URI served by this listener.
func (s *Server) URL() string {
	if s.ln == nil {
		return s.path
	}
	return "http://" + s.ln.Addr().String() + s.path
}

// Handler returns the gin engine serving the callback route.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.GET(s.path, s.handleCallback)
	return r
}

func (s *Server) handleCallback(c *gin.Context) {
	res := resultFromQuery(c.Request.URL.Query())

	select {
	case s.results <- res:
	default:
		c.Data(http.StatusConflict, "text/html; charset=utf-8", page("Already handled", "This login was already processed. You can close this tab."))
		return
	}

	switch {
	case res.Failed():
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", page("Sign-in failed", "The identity provider returned: "+res.Reason()+". Return to the terminal for details."))
	case res.Code == "":
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", page("Sign-in failed", "No authorization code was received. Return to the terminal and try again."))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", page("Signed in", "You can close this tab and return to the terminal."))
	}
}

// Wait blocks until the first redirect arrives or ctx ends.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-s.results:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Shutdown stops the listener, letting the in-flight response finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func page(title, msg string) []byte {
	return []byte("<!doctype html><html><head><title>ragdash: " + escape(title) + "</title></head>" +
		"<body style=\"font-family:sans-serif;margin:4em\"><h2>" + escape(title) + "</h2><p>" + escape(msg) + "</p></body></html>")
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func escape(s string) string { return htmlEscaper.Replace(s) }

const requestIDHeader = "X-Request-ID"

// requestLogger logs each request with zerolog. The query string is never
// logged because it carries the authorization code.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("callback request")
	}
}
