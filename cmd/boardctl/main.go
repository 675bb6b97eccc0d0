// boardctl is the operator CLI for the leaderboard dashboard: one-off
// fetches, local snapshots, refresh notices and a terminal kiosk.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sbuboard/internal/cli"
	"sbuboard/internal/config"
	applog "sbuboard/internal/log"
)

var (
	verbose bool
	timeout time.Duration

	cfg    *config.Config
	logger *applog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Operate the SBU leaderboard dashboard",
	Long: `boardctl talks to the same leaderboard backend as the dashboard server.

The backend and its credentials come from the environment (DATA_BACKEND,
SUPABASE_URL, SQLITE_DB_PATH, ...), with a .env file loaded when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger = cli.SetupLogger(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for backend calls")

	rootCmd.AddCommand(fetchCmd, snapshotCmd, notifyCmd, kioskCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
