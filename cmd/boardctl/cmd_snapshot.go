package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sbuboard/internal/backend"
	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
	"sbuboard/internal/sources/sqlite"
)

var (
	snapshotDB    string
	snapshotStart string
	snapshotEnd   string
	snapshotYear  int
	snapshotMonth int
	snapshotList  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Copy leaderboards from the configured backend into a SQLite database",
	Long: `snapshot reads the requested leaderboards from DATA_BACKEND and replaces
the matching periods in a local SQLite database, which the dashboard can then
serve with DATA_BACKEND=sqlite.`,
	Example: `  DATA_BACKEND=rpc boardctl snapshot --start 2025-01-01 --end 2025-05-30 --year 2025 --month 5
  boardctl snapshot --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := snapshotDB
		if dbPath == "" {
			dbPath = cfg.SQLiteDBPath
		}
		repo, err := sqlite.NewRepository(dbPath, logger)
		if err != nil {
			return err
		}
		defer repo.Close()

		if snapshotList {
			return listSnapshots(cmd, repo)
		}

		r := core.DateRange{Start: snapshotStart, End: snapshotEnd}
		p := core.Period{Year: snapshotYear, Month: snapshotMonth}
		if !r.Valid() && !p.Valid() {
			return errors.New("nothing to snapshot: pass --start/--end, --year/--month or both")
		}
		if cfg.DataBackend == backend.SQLiteBackend.String() && cfg.SQLiteDBPath == dbPath {
			return errors.New("source and destination are the same database")
		}

		return withBackend(cmd.Context(), func(ctx context.Context, res *backend.Result) error {
			if r.Valid() {
				records, err := res.Reader.ReadAttendance(ctx, r)
				if err != nil {
					return fmt.Errorf("read attendance: %w", err)
				}
				if err := repo.ReplaceAttendance(ctx, r, records); err != nil {
					return err
				}
				logger.InfoContext(ctx, "Snapshot taken",
					applog.FieldOperation, applog.OpReplace,
					applog.FieldDomain, applog.DomainAttendance,
					applog.FieldCacheKey, r.Key(),
					"records", len(records))
			}
			if p.Valid() {
				records, err := res.Reader.ReadCompletion(ctx, p)
				if err != nil {
					return fmt.Errorf("read completion: %w", err)
				}
				if err := repo.ReplaceCompletion(ctx, p, records); err != nil {
					return err
				}
				logger.InfoContext(ctx, "Snapshot taken",
					applog.FieldOperation, applog.OpReplace,
					applog.FieldDomain, applog.DomainCompletion,
					applog.FieldCacheKey, p.Key(),
					"records", len(records))
			}
			return nil
		})
	},
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotDB, "db", "", "destination database (default SQLITE_DB_PATH)")
	f.StringVar(&snapshotStart, "start", "", "attendance range start (YYYY-MM-DD)")
	f.StringVar(&snapshotEnd, "end", "", "attendance range end (YYYY-MM-DD)")
	f.IntVar(&snapshotYear, "year", 0, "completion year")
	f.IntVar(&snapshotMonth, "month", 0, "completion month (1-12)")
	f.BoolVar(&snapshotList, "list", false, "list the periods already stored")
}

func listSnapshots(cmd *cobra.Command, repo *sqlite.Repository) error {
	snaps, err := repo.Snapshots(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tPERIOD\tRECORDS\tTAKEN AT")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Domain, s.PeriodKey, s.Records, s.TakenAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
