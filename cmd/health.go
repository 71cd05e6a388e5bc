// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/httperrors"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the dashboard backend is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		h, err := a.api.Health(ctx)
		if err != nil {
			return reported(httperrors.FormatNetworkError(err, "checking backend health", a.cfg.API.BaseURL))
		}
		pterm.Success.Printf("%s is %s\n", a.cfg.API.BaseURL, h.Status)
		if h.Message != "" {
			pterm.Println("   " + h.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
