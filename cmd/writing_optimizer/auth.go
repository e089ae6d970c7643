package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/gdocs"
)

var authListen string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to Google Docs and cache the token",
	Long: `Auth opens the Google consent page, waits for the redirect on a loopback port
and writes the token to the token file. Later commands reuse and refresh it.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVar(&authListen, "listen", "127.0.0.1:0", "Loopback address for the OAuth redirect")
}

func runAuth(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	oauthCfg, err := gdocs.LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	auth := &gdocs.InteractiveConsentAuth{
		Config:     oauthCfg,
		TokenFile:  cfg.TokenFile,
		Out:        cmd.ErrOrStderr(),
		ListenAddr: authListen,
	}
	if _, err := auth.TokenSource(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.TokenFile)
	return err
}
