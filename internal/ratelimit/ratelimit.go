// Package ratelimit provides a keyed token bucket limiter. Inbound handlers use
// Allow to reject bursts; outbound clients use Wait to pace remote calls.
package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedLimiter manages an independent token bucket per key.
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idle     time.Duration

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Config holds limiter configuration
type Config struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
}

// DefaultConfig returns sensible defaults for inbound protection
func DefaultConfig() Config {
	return Config{
		RPS:             1,
		Burst:           30,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     10 * time.Minute,
	}
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *KeyedLimiter {
	cfg := DefaultConfig()
	cfg.RPS = rps
	cfg.Burst = burst
	return NewWithConfig(cfg)
}

// NewWithConfig creates a keyed limiter and starts its idle-key sweeper.
func NewWithConfig(cfg Config) *KeyedLimiter {
	def := DefaultConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}

	kl := &KeyedLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
		idle:     cfg.IdleTimeout,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go kl.cleanup(cfg.CleanupInterval)
	return kl
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.get(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is done.
func (kl *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return kl.get(key).Wait(ctx)
}

// Keys returns the number of tracked keys
func (kl *KeyedLimiter) Keys() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.limiters)
}

func (kl *KeyedLimiter) get(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e, ok := kl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (kl *KeyedLimiter) cleanup(interval time.Duration) {
	defer close(kl.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			kl.evictIdle(time.Now())
		case <-kl.done:
			return
		}
	}
}

func (kl *KeyedLimiter) evictIdle(now time.Time) int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	cutoff := now.Add(-kl.idle)
	n := 0
	for k, e := range kl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(kl.limiters, k)
			n++
		}
	}
	return n
}

// Stop shuts down the sweeper and waits for it to exit.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() {
		close(kl.done)
		<-kl.stopped
	})
}

// Middleware rejects requests whose key has no tokens left. A nil onLimit
// answers 429 with a Retry-After header.
func (kl *KeyedLimiter) Middleware(key func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !kl.Allow(key(r)) {
				if onLimit != nil {
					onLimit(w, r)
				} else {
					w.Header().Set("Retry-After", "1")
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
