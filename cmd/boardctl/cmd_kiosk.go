package main

import (
	"github.com/spf13/cobra"

	"sbuboard/internal/cli"
	"sbuboard/internal/kiosk"
	applog "sbuboard/internal/log"
	"sbuboard/internal/worker"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Show the rotating leaderboards in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The TUI owns stdout.
		if !verbose {
			logger = applog.Discard()
		}

		app, err := cli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		if err := app.Start(ctx, cfg); err != nil {
			return err
		}

		go worker.NewRefreshWorker(app.Registry, logger).Poll(ctx, cfg.RefreshInterval)
		return kiosk.Run(ctx, app.Board, logger)
	},
}
