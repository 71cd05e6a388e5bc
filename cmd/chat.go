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

var chatMaxTokens int

// chatCmd sends one prompt to the dashboard's chat endpoint.
var chatCmd = &cobra.Command{
	Use:   "chat <prompt>",
	Short: "Ask the dashboard a question",
	Long: `The chat command sends a prompt to the dashboard's chat endpoint and prints the
answer. Like the /chat page, it requires a session: run 'ragdash login' first.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if !a.allowRoute("/chat") {
			return nil
		}

		stopSpinner := startInlineSpinner(os.Stderr, "Thinking", 120*time.Millisecond)
		answer, err := a.api.Chat(cmd.Context(), strings.Join(args, " "), chatMaxTokens)
		stopSpinner()
		if err != nil {
			if backend.IsUnauthorized(err) {
				pterm.Warning.Println("The backend rejected the stored session. Run 'ragdash login' again.")
				return reported(err)
			}
			return reported(httperrors.FormatNetworkError(err, "sending chat prompt", a.cfg.API.BaseURL))
		}

		pterm.Println(answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 1000, "Maximum tokens in the answer")
}
