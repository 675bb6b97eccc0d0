// Package sqlite keeps pre-aggregated leaderboards in a local SQLite file so
// the dashboard can run from a snapshot when the remote service is unreachable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
)

// Repository reads and writes leaderboard rows.
type Repository struct {
	db     *sql.DB
	logger *applog.Logger
}

// Snapshot describes the last time a period was written.
type Snapshot struct {
	Domain    string
	PeriodKey string
	Records   int
	TakenAt   time.Time
}

// NewRepository opens dbPath, creating its directory, and migrates it.
func NewRepository(dbPath string, logger *applog.Logger) (*Repository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const selectAttendance = `
SELECT sbu_id, sbu_name, rank, total_employees, avg_worked_hours,
       missing_logs_percentage, low_hours_percentage, high_hours_percentage,
       invalid_hours_percentage, health_score, employees_with_issues
FROM attendance_leaderboard
WHERE start_date = ? AND end_date = ?
ORDER BY position`

// ReadAttendance returns rows for the range in the order they were stored.
func (r *Repository) ReadAttendance(ctx context.Context, dr core.DateRange) ([]core.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectAttendance, dr.Start, dr.End)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	out := []core.AttendanceRecord{}
	for rows.Next() {
		var (
			rec                                  core.AttendanceRecord
			missing, low, high, invalid, health sql.NullFloat64
		)
		if err := rows.Scan(&rec.SBUID, &rec.SBUName, &rec.Rank, &rec.TotalEmployees, &rec.AvgWorkedHours,
			&missing, &low, &high, &invalid, &health, &rec.EmployeesWithIssues); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.MissingLogsPercentage = fromNull(missing)
		rec.LowHoursPercentage = fromNull(low)
		rec.HighHoursPercentage = fromNull(high)
		rec.InvalidHoursPercentage = fromNull(invalid)
		rec.HealthScore = fromNull(health)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return out, nil
}

const selectCompletion = `
SELECT sbu_id, sbu_name, total_active_employees, submitted_employees,
       not_submitted_employees, completion_percentage
FROM completion_leaderboard
WHERE year = ? AND month = ?
ORDER BY position`

// ReadCompletion returns rows for the period in the order they were stored.
func (r *Repository) ReadCompletion(ctx context.Context, p core.Period) ([]core.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectCompletion, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("query completion: %w", err)
	}
	defer rows.Close()

	out := []core.CompletionRecord{}
	for rows.Next() {
		var rec core.CompletionRecord
		if err := rows.Scan(&rec.SBUID, &rec.SBUName, &rec.TotalActiveEmployees, &rec.SubmittedEmployees,
			&rec.NotSubmittedEmployees, &rec.CompletionPercentage); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completion: %w", err)
	}
	return out, nil
}

// ReplaceAttendance swaps all rows for the range in one transaction.
func (r *Repository) ReplaceAttendance(ctx context.Context, dr core.DateRange, records []core.AttendanceRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM attendance_leaderboard WHERE start_date = ? AND end_date = ?`, dr.Start, dr.End); err != nil {
			return fmt.Errorf("clear attendance: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO attendance_leaderboard (
    start_date, end_date, position, sbu_id, sbu_name, rank, total_employees, avg_worked_hours,
    missing_logs_percentage, low_hours_percentage, high_hours_percentage,
    invalid_hours_percentage, health_score, employees_with_issues
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare attendance insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range records {
			if _, err := stmt.ExecContext(ctx, dr.Start, dr.End, i, rec.SBUID, rec.SBUName, rec.Rank,
				rec.TotalEmployees, rec.AvgWorkedHours,
				toNull(rec.MissingLogsPercentage), toNull(rec.LowHoursPercentage), toNull(rec.HighHoursPercentage),
				toNull(rec.InvalidHoursPercentage), toNull(rec.HealthScore), rec.EmployeesWithIssues); err != nil {
				return fmt.Errorf("insert attendance %s: %w", rec.SBUID, err)
			}
		}
		return recordSnapshot(ctx, tx, applog.DomainAttendance, dr.Key(), len(records))
	})
}

// ReplaceCompletion swaps all rows for the period in one transaction.
func (r *Repository) ReplaceCompletion(ctx context.Context, p core.Period, records []core.CompletionRecord) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM completion_leaderboard WHERE year = ? AND month = ?`, p.Year, p.Month); err != nil {
			return fmt.Errorf("clear completion: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO completion_leaderboard (
    year, month, position, sbu_id, sbu_name, total_active_employees,
    submitted_employees, not_submitted_employees, completion_percentage
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare completion insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range records {
			if _, err := stmt.ExecContext(ctx, p.Year, p.Month, i, rec.SBUID, rec.SBUName, rec.TotalActiveEmployees,
				rec.SubmittedEmployees, rec.NotSubmittedEmployees, rec.CompletionPercentage); err != nil {
				return fmt.Errorf("insert completion %s: %w", rec.SBUID, err)
			}
		}
		return recordSnapshot(ctx, tx, applog.DomainCompletion, p.Key(), len(records))
	})
}

// Snapshots lists what has been written, newest first.
func (r *Repository) Snapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT domain, period_key, records, taken_at FROM leaderboard_snapshots ORDER BY taken_at DESC, domain`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s       Snapshot
			takenAt string
		)
		if err := rows.Scan(&s.Domain, &s.PeriodKey, &s.Records, &takenAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.TakenAt, _ = time.Parse(time.RFC3339Nano, takenAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func recordSnapshot(ctx context.Context, tx *sql.Tx, domain, key string, n int) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO leaderboard_snapshots (domain, period_key, records, taken_at) VALUES (?, ?, ?, ?)
ON CONFLICT (domain, period_key) DO UPDATE SET records = excluded.records, taken_at = excluded.taken_at`,
		domain, key, n, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.WarnContext(ctx, "Rollback failed", applog.FieldError, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return core.Float(v.Float64)
}

func toNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
