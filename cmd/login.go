// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/auth"
	"ragdash/cli/internal/callback"
	"ragdash/cli/internal/logging"
)

const loginTimeout = 5 * time.Minute

var forceLogin bool

// loginCmd represents the login command for SSO authentication.
// It opens the dashboard's SSO page in the browser and waits on a loopback
// listener for the identity provider to redirect back with an authorization code.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in to the dashboard via browser SSO",
	Long: `The login command signs you in through your organisation's identity provider.
It opens the dashboard's login page in your browser and listens on a local
callback address for the redirect that carries the authorization code. The code
is exchanged with the dashboard backend for an access token, and the resulting
session is stored in the OS keyring.

If the browser cannot be opened, the link is printed so you can open it yourself.
If the redirect cannot reach this machine, copy the final URL from the browser
and finish with 'ragdash callback <url>'.

The command gives up after 5 minutes. If already logged in it does nothing
unless --force is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		// If already logged in, short-circuit
		if u := a.store.CurrentUser(); u != nil && !forceLogin {
			pterm.Printf("Already logged in as %s\n", displayName(u))
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), loginTimeout)
		defer cancel()

		srv, err := callback.Start(a.cfg.Callback.ListenAddr, a.cfg.Callback.Path, a.log)
		if err != nil {
			pterm.Error.Println("Cannot listen for the sign-in redirect.")
			pterm.Printf("   Another process may be using %s. Set RAGDASH_CALLBACK_ADDR or finish with 'ragdash callback'.\n", a.cfg.Callback.ListenAddr)
			return reported(err)
		}
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()

		attempt, err := a.ctrl.BeginLogin(ctx)
		pterm.Println("Open this link to complete login:")
		pterm.Printf("%s\n\n", a.ctrl.LoginURL())
		if err != nil {
			pterm.Warning.Println("Could not open a browser automatically; open the link above yourself.")
		}

		// Anything still in flight when the deadline passes or Ctrl-C arrives is discarded.
		stopAbandon := context.AfterFunc(ctx, attempt.Abandon)
		defer stopAbandon()

		stopSpinner := startInlineSpinner(os.Stdout, "Waiting for sign-in", 120*time.Millisecond)
		defer stopSpinner()

		res, err := srv.Wait(ctx)
		if err != nil {
			stopSpinner()
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("login timed out after %s", loginTimeout)
			}
			return fmt.Errorf("login cancelled")
		}

		if res.Failed() {
			stopSpinner()
			err := attempt.Fail(res.Reason())
			logging.PresentAuthError(err)
			return reported(err)
		}

		err = attempt.Complete(ctx, res.Code)
		stopSpinner()
		if err != nil {
			logging.PresentAuthError(err)
			return reported(err)
		}

		showLoginGreeting(a.store.CurrentUser())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolVar(&forceLogin, "force", false, "Sign in again even when a session exists")
}

func displayName(u *auth.User) string {
	switch {
	case u == nil:
		return ""
	case u.Email != "":
		return u.Email
	case u.Username != "":
		return u.Username
	default:
		return u.Name
	}
}

// showLoginGreeting displays a friendly greeting message with the user's email after login
func showLoginGreeting(u *auth.User) {
	if name := displayName(u); name != "" {
		pterm.Println(getRandomLoginGreeting(name))
		return
	}
	pterm.Println("✅ Login successful!")
}

// getRandomLoginGreeting returns a random greeting phrase with the user's identifier
func getRandomLoginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s! Ready to ask?",
		"💫 Successfully authenticated as %s",
		"🌟 Welcome aboard, %s!",
		"⚡ Logged in as %s - let's go!",
		"✅ Authentication complete! Hi %s!",
		"🎯 You're in, %s!",
		"🔓 Access granted! Welcome %s!",
	}

	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], identifier)
}
