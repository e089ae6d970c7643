package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	fetchDoc string
	fetchOut string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print the plain text of a Google Doc",
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchDoc, "doc", "d", "", "Google Doc ID or URL (required)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Write the text to this file instead of stdout")

	if err := fetchCmd.MarkFlagRequired("doc"); err != nil {
		panic(fmt.Sprintf("failed to mark doc flag as required: %v", err))
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cfg)
	defer cancel()

	gw, err := newGateway(ctx, cfg, cmd.ErrOrStderr(), false, nil)
	if err != nil {
		return err
	}
	text, err := gw.Fetch(ctx, fetchDoc)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if fetchOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(fetchOut, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", fetchOut, err)
	}
	slog.Info("document written", "doc", fetchDoc, "path", fetchOut, "bytes", len(text))
	return nil
}
