// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Ragdash CLI.
// It implements subcommands for signing in to the RAG dashboard through SSO,
// inspecting and clearing the stored session, and calling the authenticated
// dashboard API, using the Cobra CLI framework and pterm for terminal output.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "ragdash",
	Short:         "Ragdash CLI for the RAG dashboard",
	Long:          `Ragdash signs you in to the RAG dashboard through your organisation's SSO and keeps the session in the OS keyring, so dashboard API calls from the terminal are authenticated.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			backendStatus := "unreachable"
			if h, err := a.api.Health(ctx); err == nil && h.Status != "" {
				backendStatus = h.Status
			}

			fmt.Printf("ragdash %s\nbackend %s (%s)\n", Version, a.cfg.API.BaseURL, backendStatus)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// reportedError marks an error whose explanation was already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// reported wraps err so Execute only sets the exit code.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// Execute runs the CLI application. Ctrl-C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			pterm.Error.Println(logging.PresentError(rootCmd.Name(), err))
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and backend status")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose debug output")
}
