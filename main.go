// Package main is the entry point for the Ragdash CLI application.
// It signs users in to the RAG dashboard and calls its API on their behalf.
package main

import (
	"ragdash/cli/cmd"
)

// main is the entry point for the Ragdash CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
