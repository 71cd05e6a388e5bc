// Package xdg provides helpers to resolve XDG Base Directory paths for ragdash.
// Configuration and the file-based keyring fallback live under the config
// directory; nothing sensitive is written outside of it.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "ragdash"

// ConfigDir returns the XDG config directory for ragdash.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/ragdash when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// KeyringDir returns the directory used by the encrypted file keyring backend.
// It lives inside ConfigDir so a single private directory holds all local state.
func KeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	kr := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(kr, 0o700); err != nil {
		return "", err
	}
	return kr, nil
}

func ensure(envVar string, fallback ...string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
