package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/observability"
	"github.com/jonathan/writing-optimizer/internal/server"
)

var (
	historyServer string
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the session history of a running server",
	Long: `History reads GET /session/history from a running "serve" process. Each analyze
invocation prints its own history when it analyzes more than one input.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyServer, "server", "", "Server base URL (default http://<listen_addr from config>)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the raw history JSON")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	base := historyServer
	if base == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		base = "http://" + cfg.ListenAddr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+"/session/history", nil)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, server.DefaultMaxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e server.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if historyJSON {
		_, err = cmd.OutOrStdout().Write(append(body, '\n'))
		return err
	}

	var history server.HistoryResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(history.Entries, history.Summary)
	return nil
}
