package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"sbuboard/internal/backend"
	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
)

var (
	fetchStart string
	fetchEnd   string
	fetchYear  int
	fetchMonth int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a leaderboard from the configured backend and print it as JSON",
}

var fetchAttendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Fetch the attendance health leaderboard for a date range",
	Example: `  boardctl fetch attendance --start 2025-01-01 --end 2025-05-30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := core.DateRange{Start: fetchStart, End: fetchEnd}
		if !r.Valid() {
			return errors.New("--start and --end are required")
		}
		return withBackend(cmd.Context(), func(ctx context.Context, res *backend.Result) error {
			records, err := res.Reader.ReadAttendance(ctx, r)
			if err != nil {
				return err
			}
			logger.DebugContext(ctx, "Fetched attendance",
				applog.FieldOperation, applog.OpFetch,
				applog.FieldCacheKey, r.Key(),
				"records", len(records))
			return writeJSON(cmd.OutOrStdout(), records)
		})
	},
}

var fetchCompletionCmd = &cobra.Command{
	Use:     "completion",
	Aliases: []string{"brag"},
	Short:   "Fetch the brag document completion leaderboard for a month",
	Example: `  boardctl fetch completion --year 2025 --month 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := core.Period{Year: fetchYear, Month: fetchMonth}
		if !p.Valid() {
			return errors.New("--year and --month are required")
		}
		return withBackend(cmd.Context(), func(ctx context.Context, res *backend.Result) error {
			records, err := res.Reader.ReadCompletion(ctx, p)
			if err != nil {
				return err
			}
			logger.DebugContext(ctx, "Fetched completion",
				applog.FieldOperation, applog.OpFetch,
				applog.FieldCacheKey, p.Key(),
				"records", len(records))
			return writeJSON(cmd.OutOrStdout(), records)
		})
	},
}

func init() {
	fetchAttendanceCmd.Flags().StringVar(&fetchStart, "start", "", "range start (YYYY-MM-DD)")
	fetchAttendanceCmd.Flags().StringVar(&fetchEnd, "end", "", "range end (YYYY-MM-DD)")
	fetchCompletionCmd.Flags().IntVar(&fetchYear, "year", 0, "reporting year")
	fetchCompletionCmd.Flags().IntVar(&fetchMonth, "month", 0, "reporting month (1-12)")

	fetchCmd.AddCommand(fetchAttendanceCmd, fetchCompletionCmd)
}

// withBackend opens the configured backend for the duration of fn, bounded
// by --timeout.
func withBackend(ctx context.Context, fn func(context.Context, *backend.Result) error) error {
	res, err := backend.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx, res)
}
