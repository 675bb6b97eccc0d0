package slides

import (
	"context"
	"sync"
	"time"
)

// Rotator advances the current slide every interval, wrapping around the
// deck. Manual navigation restarts the interval.
type Rotator struct {
	mu       sync.Mutex
	index    int
	length   int
	interval time.Duration
	onChange func(index int)

	reset   chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
	stopped bool
}

// NewRotator returns a stopped rotator at slide 0. onChange, if set, is
// called after every index change, outside the lock.
func NewRotator(length int, interval time.Duration, onChange func(int)) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Rotator{
		length:   length,
		interval: interval,
		onChange: onChange,
		reset:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the rotation until ctx is done or Stop is called. Calling it
// again has no effect.
func (r *Rotator) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true
	go r.run(ctx)
}

func (r *Rotator) run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-r.reset:
			ticker.Reset(r.Interval())
		case <-ticker.C:
			r.Next()
		}
	}
}

// Stop ends the rotation and waits for it to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	close(r.stop)
	if started {
		<-r.done
	}
}

func (r *Rotator) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

func (r *Rotator) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interval
}

// Next moves to the following slide.
func (r *Rotator) Next() int {
	return r.move(func(i, n int) int { return (i + 1) % n })
}

// Prev moves to the previous slide.
func (r *Rotator) Prev() int {
	return r.move(func(i, n int) int { return (i - 1 + n) % n })
}

// GoTo jumps to slide i (wrapped into range) and restarts the interval.
func (r *Rotator) GoTo(i int) int {
	idx := r.move(func(_, n int) int { return ((i % n) + n) % n })
	r.restart()
	return idx
}

// SetLength resizes the deck, keeping the current slide when it still exists.
func (r *Rotator) SetLength(n int) {
	r.mu.Lock()
	r.length = n
	changed := false
	if n <= 0 || r.index >= n {
		r.index = 0
		changed = true
	}
	idx := r.index
	r.mu.Unlock()
	if changed {
		r.notify(idx)
	}
}

// SetInterval changes the rotation period and restarts the interval.
func (r *Rotator) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.interval = d
	r.mu.Unlock()
	r.restart()
}

func (r *Rotator) move(step func(i, n int) int) int {
	r.mu.Lock()
	if r.length <= 0 {
		r.mu.Unlock()
		return 0
	}
	r.index = step(r.index, r.length)
	idx := r.index
	r.mu.Unlock()
	r.notify(idx)
	return idx
}

func (r *Rotator) notify(idx int) {
	if r.onChange != nil {
		r.onChange(idx)
	}
}

func (r *Rotator) restart() {
	select {
	case r.reset <- struct{}{}:
	default:
	}
}
