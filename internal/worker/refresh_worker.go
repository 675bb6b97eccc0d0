// Package worker turns refresh notifications and timers into manual
// refetches of the leaderboards on screen.
package worker

import (
	"context"
	"errors"
	"time"

	"sbuboard/internal/amqp"
	applog "sbuboard/internal/log"
)

// Refresher forces a fetch for every mounted query of domain whose key
// matches (all of them when key is empty) and reports how many it hit.
type Refresher interface {
	Refetch(ctx context.Context, domain, key string) int
}

// Consumer delivers refresh messages until ctx is done.
type Consumer interface {
	ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshMessage) error) error
}

// RefreshWorker handles refresh notifications for one dashboard process
type RefreshWorker struct {
	refresher Refresher
	logger    *applog.Logger
}

func NewRefreshWorker(refresher Refresher, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &RefreshWorker{
		refresher: refresher,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRefreshMessage refetches the queries the message names. A message
// matching nothing on screen is not an error.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshMessage) error {
	n := w.refresher.Refetch(ctx, msg.Domain, msg.Key)
	level := w.logger.InfoContext
	if n == 0 {
		level = w.logger.DebugContext
	}
	level(ctx, "Processed refresh message",
		applog.FieldOperation, applog.OpRefetch,
		applog.FieldDomain, msg.Domain,
		applog.FieldCacheKey, msg.Key,
		"queries", n,
		"sent_at", msg.Timestamp.Format(time.RFC3339))
	return nil
}

// Run consumes until ctx is done. Cancellation is a clean exit.
func (w *RefreshWorker) Run(ctx context.Context, consumer Consumer) error {
	err := consumer.ConsumeRefresh(ctx, w.HandleRefreshMessage)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Poll refetches both leaderboards every interval until ctx is done. It is
// the fallback when no broker is configured.
func (w *RefreshWorker) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic refresh enabled", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, domain := range []string{applog.DomainAttendance, applog.DomainCompletion} {
				n := w.refresher.Refetch(ctx, domain, "")
				w.logger.DebugContext(ctx, "Periodic refresh",
					applog.FieldOperation, applog.OpRefetch,
					applog.FieldDomain, domain,
					"queries", n)
			}
		}
	}
}
