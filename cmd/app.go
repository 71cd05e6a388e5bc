// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"ragdash/cli/internal/auth"
	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/config"
	"ragdash/cli/internal/guard"
	"ragdash/cli/internal/keychain"
	"ragdash/cli/internal/logging"
)

// app is the per-invocation wiring shared by every command: one session store,
// one backend client that reads its credentials from that store, and the
// controller that is allowed to change the session.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	keychain *keychain.Manager
	store    *auth.Store
	api      backend.API
	ctrl     *auth.Controller
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.NewLogger(os.Stderr, cfg.LogLevel, verbose)

	// Without a keyring the session still works for this process.
	var storage auth.Storage
	km, err := keychain.NewManager(cfg.Keyring)
	if err != nil {
		log.Warn().Err(err).Msg("keyring unavailable, session will not be remembered")
	} else {
		storage = km
	}

	store := auth.OpenStore(storage, log)
	api := backend.New(cfg.API, time.Duration(cfg.HTTPTimeout), store)

	return &app{
		cfg:      cfg,
		log:      log,
		keychain: km,
		store:    store,
		api:      api,
		ctrl:     auth.NewController(store, api, auth.OpenerFunc(openBrowser), log),
	}, nil
}

// requireLogin prints a hint and returns false when there is no session.
func (a *app) requireLogin() bool {
	if a.store.IsAuthenticated() {
		return true
	}
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'ragdash login' to get started.")
	return false
}

// allowRoute runs the route guard for a dashboard path and prints the login
// hint when the session does not allow it.
func (a *app) allowRoute(path string) bool {
	d := guard.Default().Check(a.store, path)
	if d.Kind == guard.Allow {
		return true
	}
	a.log.Debug().Stringer("decision", d).Str("route", path).Msg("route guarded")
	a.requireLogin()
	return false
}

// openBrowser attempts to open the provided URL in the user's default browser.
// It uses platform-specific commands to launch the default browser:
//   - Windows: rundll32 url.dll,FileProtocolHandler
//   - macOS: open command
//   - Linux: xdg-open command
//
// The function starts the browser process but does not wait for it to complete.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
