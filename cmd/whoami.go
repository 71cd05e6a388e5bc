// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/httperrors"
)

var checkWhoAmI bool

// whoamiCmd represents the whoami command for displaying the current session.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show current authenticated account",
	Long: `The whoami command displays the account of the stored session. It reads only
the local session unless --check is given, in which case it also asks the
backend whom the stored token belongs to.

If no session exists, it will indicate that the user is not logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.requireLogin() {
			return nil
		}

		st := a.store.State()
		pterm.Printf("👤 Current user: %s\n", displayName(st.User))
		if st.User.Name != "" {
			pterm.Printf("   Name:     %s\n", st.User.Name)
		}
		if st.User.Username != "" {
			pterm.Printf("   Username: %s\n", st.User.Username)
		}
		if exp, ok := st.ExpiresAt(); ok {
			if time.Now().After(exp) {
				pterm.Warning.Printf("Token expired at %s; the backend may reject it.\n", exp.Local().Format(time.RFC1123))
			} else {
				pterm.Printf("   Token expires %s\n", exp.Local().Format(time.RFC1123))
			}
		}

		if !checkWhoAmI {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		id, err := a.api.Me(ctx)
		if err != nil {
			if backend.IsUnauthorized(err) {
				pterm.Warning.Println("The backend no longer accepts this session. Run 'ragdash login' again.")
				return reported(err)
			}
			return reported(httperrors.FormatNetworkError(err, "validating the session", a.cfg.API.BaseURL))
		}
		pterm.Success.Printf("Backend confirms session for %s\n", id.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&checkWhoAmI, "check", false, "Validate the session with the backend")
}
