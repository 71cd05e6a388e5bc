// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/guard"
)

var guardCmd = &cobra.Command{
	Use:   "guard <path>",
	Short: "Show whether a dashboard route would be allowed",
	Long: `The guard command prints the route guard's decision for a dashboard path using
the stored session: allow, or a redirect to the login page that remembers the
path. /login and /auth/callback are always allowed.`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		d := guard.Default().Check(a.store, args[0])
		switch d.Kind {
		case guard.Allow:
			pterm.Success.Printf("%s: allow\n", args[0])
		case guard.RedirectToLogin:
			pterm.Warning.Printf("%s: redirect to %s\n", args[0], d.RedirectTarget())
		default:
			fmt.Println(d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guardCmd)
}
