// Copyright (c) 2025 Ragdash
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvVerbose forces debug logging when set to "1", mirroring --verbose.
const EnvVerbose = "RAGDASH_VERBOSE"

// NewLogger builds the console logger used by every command.
// Diagnostics go to w (stderr in the CLI) so they never mix with command output.
// An unknown level falls back to warn; verbose always wins.
func NewLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if verbose || os.Getenv(EnvVerbose) == "1" {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
