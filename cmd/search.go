// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/httperrors"
)

var searchTopK int

// searchCmd queries the dashboard's knowledge base.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base",
	Long: `The search command returns the knowledge-base chunks most similar to the query,
with their source file and similarity score. It requires a session.

If nothing has been indexed yet, run 'ragdash documents process' first.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.allowRoute("/search") {
			return nil
		}

		stopSpinner := startInlineSpinner(os.Stderr, "Searching", 120*time.Millisecond)
		res, err := a.api.Search(cmd.Context(), strings.Join(args, " "), searchTopK)
		stopSpinner()
		if err != nil {
			if backend.IsUnauthorized(err) {
				pterm.Warning.Println("The backend rejected the stored session. Run 'ragdash login' again.")
				return reported(err)
			}
			return reported(httperrors.FormatNetworkError(err, "searching the knowledge base", a.cfg.API.BaseURL))
		}

		if len(res.Results) == 0 {
			msg := res.Message
			if msg == "" {
				msg = "No matching documents."
			}
			pterm.Info.Println(msg)
			return nil
		}
		for i, r := range res.Results {
			pterm.Printf("%d. %s %s\n", i+1, pterm.Bold.Sprint(r.Document.Source), pterm.Gray(pterm.Sprintf("(%.2f)", r.Similarity)))
			pterm.Println("   " + strings.ReplaceAll(strings.TrimSpace(r.Document.Content), "\n", "\n   "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 5, "Number of results")
}
