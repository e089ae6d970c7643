// Package main provides the writing_optimizer command: AI and local writing
// feedback for Google Docs, files, URLs and pasted text.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "writing_optimizer",
	Short: "Writing feedback for Google Docs and plain text",
	Long: `writing_optimizer fetches a Google Doc (or reads a file, URL or stdin), asks a language model
for a clarity score, tone and suggestions, computes readability and word-frequency statistics
locally, and can write revised text back to the document.

Configuration is read from --config, then WRITING_OPTIMIZER_* environment variables, then flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
