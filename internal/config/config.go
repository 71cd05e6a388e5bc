// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session itself goes to the OS keyring.
//
// Values are layered: built-in defaults, then config.json, then a .env file in the
// working directory, then RAGDASH_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ragdash/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel    string         `json:"log_level"`
	API         APIConfig      `json:"api"`
	Callback    CallbackConfig `json:"callback"`
	Keyring     KeyringConfig  `json:"keyring"`
	HTTPTimeout Duration       `json:"http_timeout"`
}

// APIConfig describes where the dashboard backend lives.
type APIConfig struct {
	BaseURL   string    `json:"base_url"`
	Endpoints Endpoints `json:"endpoints"`
}

// Endpoints contains REST API endpoint paths relative to BaseURL.
type Endpoints struct {
	Login            string `json:"login"`             // e.g., "/api/auth/login"
	Token            string `json:"token"`             // e.g., "/api/auth/token"
	Me               string `json:"me"`                // e.g., "/api/auth/me"
	Health           string `json:"health"`            // e.g., "/api/health"
	Chat             string `json:"chat"`              // e.g., "/api/chat"
	Search           string `json:"search"`            // e.g., "/api/search"
	ProcessDocuments string `json:"process_documents"` // e.g., "/api/documents/process"
	DocumentCount    string `json:"document_count"`    // e.g., "/api/documents/count"
}

// CallbackConfig controls the loopback listener that receives the SSO redirect.
// It must match the redirect URI registered with the identity provider.
type CallbackConfig struct {
	ListenAddr string `json:"listen_addr"`
	Path       string `json:"path"`
}

// KeyringConfig selects the keyring backends used to persist the session.
type KeyringConfig struct {
	// Backends lists keyring backend names in preference order; empty means platform default.
	Backends []string `json:"backends,omitempty"`
	// FilePassphrase unlocks the encrypted file backend. Prefer RAGDASH_KEYRING_PASSWORD.
	FilePassphrase string `json:"-"`
}

// Duration is a time.Duration that marshals as a Go duration string.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Environment variables recognised by Load.
const (
	EnvAPIURL          = "RAGDASH_API_URL"
	EnvLogLevel        = "RAGDASH_LOG_LEVEL"
	EnvCallbackAddr    = "RAGDASH_CALLBACK_ADDR"
	EnvKeyringBackends = "RAGDASH_KEYRING_BACKENDS"
	EnvKeyringPassword = "RAGDASH_KEYRING_PASSWORD"
	EnvHTTPTimeout     = "RAGDASH_HTTP_TIMEOUT"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "warn",
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Endpoints: Endpoints{
				Login:            "/api/auth/login",
				Token:            "/api/auth/token",
				Me:               "/api/auth/me",
				Health:           "/api/health",
				Chat:             "/api/chat",
				Search:           "/api/search",
				ProcessDocuments: "/api/documents/process",
				DocumentCount:    "/api/documents/count",
			},
		},
		Callback: CallbackConfig{
			ListenAddr: "127.0.0.1:8080",
			Path:       "/auth/callback",
		},
		HTTPTimeout: Duration(30 * time.Second),
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults plus env overrides.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p and applies .env and environment overrides.
func LoadFile(p string) (Config, error) {
	c, err := ReadFile(p)
	if err != nil {
		return c, err
	}

	// A missing .env is the common case.
	_ = godotenv.Load()
	applyEnv(&c)
	return c, nil
}

// Saved returns the defaults plus the config file, without .env or
// environment overrides. Commands that rewrite the file start from here.
func Saved() (Config, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return ReadFile(p)
}

// ReadFile returns the defaults overlaid with the JSON file at p.
// A missing file is not an error.
func ReadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	return c, nil
}

func applyEnv(c *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCallbackAddr)); v != "" {
		c.Callback.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeyringBackends)); v != "" {
		c.Keyring.Backends = splitList(v)
	}
	if v := os.Getenv(EnvKeyringPassword); v != "" {
		c.Keyring.FilePassphrase = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHTTPTimeout)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = Duration(d)
		}
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CallbackURL is the redirect URI the identity provider should send the browser back to.
func (c Config) CallbackURL() string {
	return "http://" + c.Callback.ListenAddr + c.Callback.Path
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes c to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
