// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ragdash/cli/internal/backend"
	"ragdash/cli/internal/config"
	"ragdash/cli/internal/terminal"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `The show command prints the configuration after defaults, the config file,
a .env file in the working directory, and RAGDASH_* environment variables have
been applied. The keyring passphrase is never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		p, _ := config.Path()
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		pterm.Println(pterm.Gray("# " + p))
		pterm.Println(string(b))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [api-url]",
	Short: "Set the dashboard backend URL and save the config file",
	Long: `The init command asks for the dashboard backend URL (or takes it as an
argument), checks that the backend answers, and writes the config file with
0600 permissions. Values from .env and RAGDASH_* variables are not written.

Example: ragdash config init https://dash.example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Saved()
		if err != nil {
			return err
		}

		raw := ""
		if len(args) == 1 {
			raw = args[0]
		} else {
			promptText := fmt.Sprintf("Dashboard URL [%s]: ", cfg.API.BaseURL)
			fmt.Print(promptText)
			raw, _ = bufio.NewReader(os.Stdin).ReadString('\n')
			raw = strings.TrimSpace(raw)
			if terminal.IsInteractive(os.Stdout) {
				terminal.ClearPreviousLines(os.Stdout, len(promptText)+len(raw), terminal.Width(os.Stdout))
			}
		}
		if raw != "" {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				pterm.Error.Println("Invalid URL. Use the form https://host[:port]")
				return reported(fmt.Errorf("invalid dashboard URL %q", raw))
			}
			cfg.API.BaseURL = strings.TrimRight(raw, "/")
		}

		stopSpinner := startInlineSpinner(os.Stdout, "verifying backend", 100*time.Millisecond)
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		_, herr := backend.New(cfg.API, 5*time.Second, nil).Health(ctx)
		stopSpinner()
		if herr != nil {
			pterm.Warning.Printf("%s did not answer the health check; saving anyway.\n", cfg.API.BaseURL)
		}

		if err := config.Save(cfg); err != nil {
			pterm.Error.Println("Failed to save configuration.")
			return reported(err)
		}
		p, _ := config.Path()
		pterm.Success.Printf("Configuration saved to %s\n", p)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
