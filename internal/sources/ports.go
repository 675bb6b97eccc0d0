package sources

import (
	"context"

	"sbuboard/internal/core"
)

// Ports for outbound adapters.
type (
	// AttendanceReader returns the attendance health leaderboard for a date range,
	// in the order the aggregation service ranked it.
	AttendanceReader interface {
		ReadAttendance(ctx context.Context, r core.DateRange) ([]core.AttendanceRecord, error)
	}

	// CompletionReader returns the brag document completion leaderboard for a month.
	CompletionReader interface {
		ReadCompletion(ctx context.Context, p core.Period) ([]core.CompletionRecord, error)
	}

	// Reader serves both leaderboards.
	Reader interface {
		AttendanceReader
		CompletionReader
	}

	// Writer stores pre-aggregated leaderboards, replacing whatever was kept
	// for the same period. Used to snapshot a remote source locally.
	Writer interface {
		ReplaceAttendance(ctx context.Context, r core.DateRange, records []core.AttendanceRecord) error
		ReplaceCompletion(ctx context.Context, p core.Period, records []core.CompletionRecord) error
	}
)
