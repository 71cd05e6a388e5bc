// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var forgetSession bool

// logoutCmd represents the logout command for clearing the session.
// Logging out is local: the backend is not told, and the access token stays
// valid there until it expires.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long: `The logout command resets the session to logged out and overwrites the copy
stored in the OS keyring. It never contacts the backend and always succeeds,
also when you are already logged out.

With --forget the keyring entry is removed entirely instead of being
overwritten with an empty session.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		a.ctrl.Logout()

		if forgetSession && a.keychain != nil {
			if err := a.keychain.ClearAuthState(); err != nil {
				a.log.Warn().Err(err).Msg("cannot remove keyring entry")
			}
		}

		pterm.Println("✅ Logged out. The stored session has been cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&forgetSession, "forget", false, "Remove the keyring entry instead of overwriting it")
}
