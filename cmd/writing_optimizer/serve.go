package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/metrics"
	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/server"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
)

var (
	serveAddr    string
	serveOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing analysis, highlighting, document and session endpoints.
Document endpoints answer 503 until a token has been cached with the auth command.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from config, 127.0.0.1:8501)")
	serveCmd.Flags().StringVar(&serveOrigins, "allowed-origins", "", "Comma-separated CORS origins (default: any)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	style, err := types.ParseStyle(cfg.Style)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	m := metrics.New()
	var docs pipeline.DocumentGateway
	if gw, err := newGateway(ctx, cfg, cmd.ErrOrStderr(), false, m); err != nil {
		slog.Warn("document endpoints disabled", "error", err)
	} else {
		docs = gw
	}

	assistant, err := newAssistant(cfg, docs, newFeedbackClient(client, cfg, m), session.NewTracker())
	if err != nil {
		return err
	}

	var origins []string
	for _, o := range strings.Split(serveOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	srv, err := server.New(server.Config{
		Addr:           cfg.ListenAddr,
		Assistant:      assistant,
		Metrics:        m,
		AllowedOrigins: origins,
		DefaultStyle:   style,
		Logger:         slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
