// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/httperrors"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Inspect or rebuild the knowledge-base index",
}

var documentsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many document chunks are indexed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.allowRoute("/documents") {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		n, err := a.api.DocumentCount(ctx)
		if err != nil {
			return reported(documentsError(err, "counting documents", a.cfg.API.BaseURL))
		}
		pterm.Printf("📚 %d document chunks indexed\n", n)
		return nil
	},
}

var documentsProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Re-index the knowledge base from its document source",
	Long: `The process command asks the backend to reload its markdown sources and rebuild
the embeddings used by search and chat. It can take a while on large collections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.allowRoute("/documents") {
			return nil
		}

		stopSpinner := startInlineSpinner(os.Stderr, "Processing documents", 120*time.Millisecond)
		res, err := a.api.ProcessDocuments(cmd.Context())
		stopSpinner()
		if errors.Is(err, backend.ErrProcessingFailed) {
			pterm.Error.Println(res.Message)
			return reported(err)
		}
		if err != nil {
			return reported(documentsError(err, "processing documents", a.cfg.API.BaseURL))
		}
		pterm.Success.Println(res.Message)
		return nil
	},
}

func documentsError(err error, action, baseURL string) error {
	if backend.IsUnauthorized(err) {
		pterm.Warning.Println("The backend rejected the stored session. Run 'ragdash login' again.")
		return err
	}
	return httperrors.FormatNetworkError(err, action, baseURL)
}

func init() {
	documentsCmd.AddCommand(documentsCountCmd, documentsProcessCmd)
	rootCmd.AddCommand(documentsCmd)
}
