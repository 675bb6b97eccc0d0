package leaderboard

import (
	"context"
	"sync"

	applog "sbuboard/internal/log"
)

// defaultErrorMessage is shown when a failure carries no text of its own.
const defaultErrorMessage = "An error occurred"

// State is what a consumer renders: the records for the current key, whether
// a fetch is in flight and the message of the last failure.
type State[R any] struct {
	Data    []R    `json:"data"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
}

// Query tracks one consumer's view of a leaderboard. It fetches on mount and
// on key change unless the key is already cached, and can be forced to
// refetch at any time. Fetches run in the background; State reports progress.
//
// Every fetch carries the generation it was started in. Results arriving
// after the params moved to another key, or after a newer fetch was started,
// are dropped.
type Query[P, R any] struct {
	store     *Store[R]
	fetch     func(ctx context.Context, p P) ([]R, error)
	keyOf     func(P) string
	valid     func(P) bool
	autoFetch bool
	logger    *applog.Logger

	mu      sync.Mutex
	params  P
	key     string
	gen     uint64
	mounted bool
	state   State[R]

	inflight int
	idle     chan struct{} // closed when inflight drops to zero
}

// QueryOption customizes a Query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	autoFetch bool
	logger    *applog.Logger
}

// WithAutoFetch toggles fetching on mount and key change. Default on.
func WithAutoFetch(on bool) QueryOption {
	return func(o *queryOptions) { o.autoFetch = on }
}

func WithLogger(l *applog.Logger) QueryOption {
	return func(o *queryOptions) { o.logger = l }
}

// NewQuery binds a fetch function and key derivation to a store.
func NewQuery[P, R any](
	store *Store[R],
	params P,
	keyOf func(P) string,
	valid func(P) bool,
	fetch func(ctx context.Context, p P) ([]R, error),
	opts ...QueryOption,
) *Query[P, R] {
	o := queryOptions{autoFetch: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = store.logger
	}
	return &Query[P, R]{
		store:     store,
		fetch:     fetch,
		keyOf:     keyOf,
		valid:     valid,
		autoFetch: o.autoFetch,
		logger:    o.logger,
		params:    params,
		key:       keyOf(params),
		state:     State[R]{Data: []R{}},
	}
}

// Mount activates the query. The first call shows cached data for the
// current key or starts a fetch; later calls do nothing.
func (q *Query[P, R]) Mount(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.mounted {
		return
	}
	q.mounted = true
	if data, ok := q.store.Cached(q.key); ok {
		q.state.Data = data
	}
	q.autoLoad(ctx)
}

// Unmount deactivates the query and drops the result of any fetch in flight.
func (q *Query[P, R]) Unmount() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mounted = false
	q.gen++
	q.state.Loading = false
}

// SetParams switches the query to new params. When the derived key changes,
// the state resets to the cached entry for the new key (or empty) and a
// fetch starts if the key is not cached. Same-key params are a no-op.
func (q *Query[P, R]) SetParams(ctx context.Context, p P) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := q.keyOf(p)
	q.params = p
	if key == q.key {
		return
	}
	q.key = key
	q.gen++

	data, ok := q.store.Cached(key)
	if !ok {
		data = []R{}
	}
	q.state = State[R]{Data: data}
	if q.mounted {
		q.autoLoad(ctx)
	}
}

// Refetch re-issues the remote call for the current params, regardless of
// the cache, and overwrites the cache entry on success.
func (q *Query[P, R]) Refetch(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.start(ctx, true)
}

// State returns a snapshot of the current state. Data is never nil and must
// be treated as read-only.
func (q *Query[P, R]) State() State[R] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Query[P, R]) Params() P {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params
}

func (q *Query[P, R]) Key() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.key
}

func (q *Query[P, R]) Domain() string {
	return q.store.Domain()
}

// Wait blocks until no fetch is in flight or ctx is done.
func (q *Query[P, R]) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// autoLoad must be called with mu held.
func (q *Query[P, R]) autoLoad(ctx context.Context) {
	if !q.autoFetch || !q.valid(q.params) {
		return
	}
	if _, ok := q.store.Cached(q.key); ok {
		return
	}
	q.start(ctx, false)
}

// start must be called with mu held.
func (q *Query[P, R]) start(ctx context.Context, force bool) {
	q.gen++
	gen, key, params := q.gen, q.key, q.params
	q.state.Loading = true
	q.state.Err = ""

	// the fetch outlives the call that triggered it
	ctx = context.WithoutCancel(ctx)

	if q.inflight == 0 {
		q.idle = make(chan struct{})
	}
	q.inflight++

	go func() {
		data, err := q.store.Load(ctx, key, func(ctx context.Context) ([]R, error) {
			return q.fetch(ctx, params)
		}, force)

		q.mu.Lock()
		defer q.mu.Unlock()
		defer q.settle()
		if gen != q.gen {
			q.logger.DebugContext(ctx, "Discarding stale fetch result", applog.FieldCacheKey, key)
			return
		}
		q.state.Loading = false
		if err != nil {
			q.state.Err = errorMessage(err)
			return
		}
		q.state.Data = data
	}()
}

// settle must be called with mu held.
func (q *Query[P, R]) settle() {
	q.inflight--
	if q.inflight == 0 {
		close(q.idle)
		q.idle = nil
	}
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
