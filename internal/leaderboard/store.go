// Package leaderboard caches leaderboard fetches per query key and drives the
// fetch lifecycle (loading, success, failure) of each mounted query.
package leaderboard

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"sbuboard/internal/cache"
	applog "sbuboard/internal/log"
)

// FetchFunc performs one remote call.
type FetchFunc[R any] func(ctx context.Context) ([]R, error)

// Store is the per-domain cache service shared by every Query of that domain.
// Unforced loads for the same key join a single in-flight call; forced loads
// always issue their own call. Only successful results reach the cache.
type Store[R any] struct {
	domain  string
	cache   cache.Cache[[]R]
	group   singleflight.Group
	timeout time.Duration
	logger  *applog.Logger
	fetches atomic.Int64
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Timeout bounds one remote call; 0 means no bound.
	Timeout time.Duration
	Logger  *applog.Logger
}

func NewStore[R any](domain string, c cache.Cache[[]R], opts StoreOptions) *Store[R] {
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}
	return &Store[R]{
		domain:  domain,
		cache:   c,
		timeout: opts.Timeout,
		logger:  opts.Logger.WithComponent(applog.ComponentLeaderboard),
	}
}

// Domain names the leaderboard this store caches.
func (s *Store[R]) Domain() string {
	return s.domain
}

// Cached returns the entry for key, if any.
func (s *Store[R]) Cached(key string) ([]R, bool) {
	return s.cache.Get(key)
}

// Size reports the number of cached keys.
func (s *Store[R]) Size() int {
	return s.cache.Size()
}

// Fetches reports how many remote calls the store has issued.
func (s *Store[R]) Fetches() int64 {
	return s.fetches.Load()
}

// Load returns the records for key. An unforced load returns the cached entry
// when present and otherwise joins or starts the in-flight call for the key.
// A forced load bypasses both and overwrites the cache on success.
//
// The remote call is detached from ctx so that one caller giving up does not
// fail the others sharing the call; ctx only bounds how long this caller waits.
func (s *Store[R]) Load(ctx context.Context, key string, fetch FetchFunc[R], force bool) ([]R, error) {
	if force {
		// later unforced loads must not join a call started before the refetch
		s.group.Forget(key)
		s.logger.DebugContext(ctx, "Forced refetch", applog.FieldDomain, s.domain, applog.FieldCacheKey, key, applog.FieldForced, true)
		return s.run(ctx, key, fetch)
	}

	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		return s.run(ctx, key, fetch)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "Joined in-flight fetch", applog.FieldDomain, s.domain, applog.FieldCacheKey, key)
		}
		return res.Val.([]R), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store[R]) run(ctx context.Context, key string, fetch FetchFunc[R]) (data []R, err error) {
	callCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, s.timeout)
		defer cancel()
	}

	s.fetches.Add(1)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("leaderboard fetch panicked: %v", r)
		}
		applog.NewStructuredLogger(s.logger).
			LogFetch(ctx, s.domain, key, len(data), time.Since(start).Milliseconds(), err)
	}()

	data, err = fetch(callCtx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []R{}
	}
	s.cache.Set(key, data)
	return data, nil
}
