// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keyring operations for ragdash.
// This module manages all interactions with the OS keychain/credential store and
// is the durable storage behind the session store: the whole serialized session
// lives in a single item keyed "authState" and is overwritten on every change.
//
// The package supports macOS Keychain, Windows Credential Manager, the Secret Service
// API, pass, and an encrypted file fallback under the XDG config directory.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"ragdash/cli/internal/config"
	"ragdash/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "ragdash"

// KeyAuthState is the fixed key under which the serialized session is stored.
const KeyAuthState = "authState"

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the keyring described by cfg.
func NewManager(cfg config.KeyringConfig) (*Manager, error) {
	ring, err := openRing(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithRing(ring), nil
}

// NewWithRing wraps an already opened keyring. Tests pass keyring.NewArrayKeyring.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// defaultBackends returns the platform-native backends in preference order.
// The encrypted file backend is always last so headless Linux boxes still work.
func defaultBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}
}

// openRing opens the OS keyring honouring the configured backend order.
func openRing(cfg config.KeyringConfig) (keyring.Keyring, error) {
	allowed := defaultBackends()
	if len(cfg.Backends) > 0 {
		allowed = allowed[:0:0]
		for _, b := range cfg.Backends {
			allowed = append(allowed, keyring.BackendType(b))
		}
	}

	dir, err := xdg.KeyringDir()
	if err != nil {
		return nil, err
	}

	kcfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowed,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
		FileDir:         dir,
		FilePasswordFunc: func(prompt string) (string, error) {
			if cfg.FilePassphrase != "" {
				return cfg.FilePassphrase, nil
			}
			return keyring.TerminalPrompt(prompt)
		},
		KeychainTrustApplication: true,
	}

	ring, err := keyring.Open(kcfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, fmt.Errorf("no usable keyring backend among %v; set %s to choose one", allowed, config.EnvKeyringBackends)
		}
		return nil, err
	}
	return ring, nil
}

// SaveAuthState stores serialized auth state in the keychain, replacing any previous value.
// This method is thread-safe.
func (m *Manager) SaveAuthState(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{
		Key:         KeyAuthState,
		Data:        data,
		Label:       "ragdash session",
		Description: "ragdash dashboard session",
	})
}

// LoadAuthState retrieves serialized auth state from the keychain.
// Missing state yields (nil, nil).
// This method is thread-safe.
func (m *Manager) LoadAuthState() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyAuthState)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return it.Data, nil
}

// ClearAuthState removes the stored auth state from the keychain.
// Removing an absent item is not an error.
// This method is thread-safe.
func (m *Manager) ClearAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(KeyAuthState); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
