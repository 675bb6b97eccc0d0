package leaderboard

import (
	"context"
	"log/slog"
	"time"

	"sbuboard/internal/cache"
	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
	"sbuboard/internal/sources"
)

type (
	AttendanceQuery = Query[core.DateRange, core.AttendanceRecord]
	CompletionQuery = Query[core.Period, core.CompletionRecord]
)

// Stores holds the one cache service per domain that every query shares.
type Stores struct {
	Attendance *Store[core.AttendanceRecord]
	Completion *Store[core.CompletionRecord]
}

// StoresConfig sizes the per-domain caches.
type StoresConfig struct {
	MaxEntries int
	TTL        time.Duration
	Timeout    time.Duration
}

// NewStores creates both stores and registers their caches with the manager
// so expired entries are swept. A nil manager skips registration.
func NewStores(cfg StoresConfig, manager *cache.Manager, logger *applog.Logger) *Stores {
	att := cache.NewLRUCache[[]core.AttendanceRecord](cfg.MaxEntries, cfg.TTL)
	comp := cache.NewLRUCache[[]core.CompletionRecord](cfg.MaxEntries, cfg.TTL)
	if manager != nil {
		manager.Register(att)
		manager.Register(comp)
	}
	opts := StoreOptions{Timeout: cfg.Timeout, Logger: logger}
	return &Stores{
		Attendance: NewStore[core.AttendanceRecord](applog.DomainAttendance, att, opts),
		Completion: NewStore[core.CompletionRecord](applog.DomainCompletion, comp, opts),
	}
}

// LogValue summarizes cache occupancy.
func (s *Stores) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int(applog.DomainAttendance, s.Attendance.Size()),
		slog.Int(applog.DomainCompletion, s.Completion.Size()),
	)
}

// NewAttendanceQuery returns the attendance leaderboard hook for a date range.
func NewAttendanceQuery(store *Store[core.AttendanceRecord], src sources.AttendanceReader, r core.DateRange, opts ...QueryOption) *AttendanceQuery {
	return NewQuery(store, r,
		core.DateRange.Key,
		core.DateRange.Valid,
		func(ctx context.Context, r core.DateRange) ([]core.AttendanceRecord, error) {
			return src.ReadAttendance(ctx, r)
		},
		opts...)
}

// NewCompletionQuery returns the brag document completion hook for a month.
func NewCompletionQuery(store *Store[core.CompletionRecord], src sources.CompletionReader, p core.Period, opts ...QueryOption) *CompletionQuery {
	return NewQuery(store, p,
		core.Period.Key,
		core.Period.Valid,
		func(ctx context.Context, p core.Period) ([]core.CompletionRecord, error) {
			return src.ReadCompletion(ctx, p)
		},
		opts...)
}
