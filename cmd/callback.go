// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/callback"
	"ragdash/cli/internal/logging"
)

// callbackCmd finishes a login from a redirect URL the user copied out of the browser.
var callbackCmd = &cobra.Command{
	Use:   "callback <redirect-url|code>",
	Short: "Finish a login from a copied redirect URL",
	Long: `The callback command completes the SSO handshake when the browser could not
reach the local listener started by 'ragdash login', for example on a remote
machine. Paste the full URL the browser ended up on, or just the value of its
code parameter.

The authorization code is single-use: a code that was already exchanged is
rejected by the backend.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		res, err := callback.Parse(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if res.Failed() {
			err := a.ctrl.FailLogin(res.Reason())
			logging.PresentAuthError(err)
			return reported(err)
		}

		if err := a.ctrl.CompleteLogin(ctx, res.Code); err != nil {
			logging.PresentAuthError(err)
			return reported(err)
		}

		pterm.Success.Println("Signed in")
		showLoginGreeting(a.store.CurrentUser())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callbackCmd)
}
