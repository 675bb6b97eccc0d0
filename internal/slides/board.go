package slides

import (
	"context"
	"sync"

	"sbuboard/internal/leaderboard"
	applog "sbuboard/internal/log"
	"sbuboard/internal/sources"
)

// Board is a running deck: one attendance and one completion query shared by
// all slides, and the rotator choosing which slide is current.
type Board struct {
	mu         sync.RWMutex
	deck       Deck
	attendance *leaderboard.AttendanceQuery
	completion *leaderboard.CompletionQuery
	rotator    *Rotator
	registry   *leaderboard.Registry
	unregister []func()
	logger     *applog.Logger
}

// NewBoard binds the deck to the shared stores. A nil registry keeps the
// queries out of refresh notifications.
func NewBoard(deck Deck, stores *leaderboard.Stores, src sources.Reader, registry *leaderboard.Registry, logger *applog.Logger) *Board {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSlides)
	b := &Board{
		deck:       deck,
		attendance: leaderboard.NewAttendanceQuery(stores.Attendance, src, deck.Attendance, leaderboard.WithLogger(logger)),
		completion: leaderboard.NewCompletionQuery(stores.Completion, src, deck.Completion, leaderboard.WithLogger(logger)),
		registry:   registry,
		logger:     logger,
	}
	b.rotator = NewRotator(len(deck.Slides), deck.Interval, func(i int) {
		logger.Debug("Slide changed", applog.FieldSlide, i)
	})
	return b
}

// Start mounts both queries and begins rotating.
func (b *Board) Start(ctx context.Context) {
	b.attendance.Mount(ctx)
	b.completion.Mount(ctx)
	if b.registry != nil {
		b.mu.Lock()
		b.unregister = append(b.unregister, b.registry.Add(b.attendance), b.registry.Add(b.completion))
		b.mu.Unlock()
	}
	b.rotator.Start(ctx)
	b.logger.InfoContext(ctx, "Board started",
		"slides", b.Len(),
		"interval", b.rotator.Interval().String(),
		"attendance", b.deck.Attendance.Key(),
		"completion", b.deck.Completion.Key())
}

// Stop halts rotation, drops in-flight results and leaves the registry.
func (b *Board) Stop() {
	b.rotator.Stop()
	b.attendance.Unmount()
	b.completion.Unmount()
	b.mu.Lock()
	for _, fn := range b.unregister {
		fn()
	}
	b.unregister = nil
	b.mu.Unlock()
}

// Apply switches to a new deck, re-parameterizing the queries. Queries whose
// key does not change keep their state.
func (b *Board) Apply(ctx context.Context, deck Deck) {
	b.mu.Lock()
	b.deck = deck
	b.mu.Unlock()

	b.attendance.SetParams(ctx, deck.Attendance)
	b.completion.SetParams(ctx, deck.Completion)
	b.rotator.SetLength(len(deck.Slides))
	b.rotator.SetInterval(deck.Interval)
	b.logger.InfoContext(ctx, "Deck applied",
		applog.FieldOperation, applog.OpReload,
		"slides", len(deck.Slides),
		"attendance", deck.Attendance.Key(),
		"completion", deck.Completion.Key())
}

// Deck returns the deck currently shown.
func (b *Board) Deck() Deck {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.deck
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.deck.Slides)
}

func (b *Board) Rotator() *Rotator {
	return b.rotator
}

func (b *Board) Attendance() *leaderboard.AttendanceQuery {
	return b.attendance
}

func (b *Board) Completion() *leaderboard.CompletionQuery {
	return b.completion
}

// Refetch forces both queries, or only the one of domain when it is set.
func (b *Board) Refetch(ctx context.Context, domain string) {
	if domain == "" || domain == applog.DomainAttendance {
		b.attendance.Refetch(ctx)
	}
	if domain == "" || domain == applog.DomainCompletion {
		b.completion.Refetch(ctx)
	}
}

// Wait blocks until neither query has a fetch in flight.
func (b *Board) Wait(ctx context.Context) error {
	if err := b.attendance.Wait(ctx); err != nil {
		return err
	}
	return b.completion.Wait(ctx)
}

// Current renders the slide the rotator is on.
func (b *Board) Current() View {
	return b.View(b.rotator.Current())
}

// View renders slide i. Out-of-range indexes wrap.
func (b *Board) View(i int) View {
	deck := b.Deck()
	n := len(deck.Slides)
	if n == 0 {
		return View{Hidden: true}
	}
	i = ((i % n) + n) % n
	slide := deck.Slides[i]

	var v View
	switch slide.Kind {
	case KindAttendancePodium:
		v = AttendancePodium(b.attendance.State(), deck.Attendance)
	case KindBragPodium:
		v = CompletionPodium(b.completion.State(), deck.Completion)
	case KindAttendanceRemaining:
		v = AttendanceRemaining(b.attendance.State())
	case KindBragRemaining:
		v = CompletionRemaining(b.completion.State())
	}
	v.Index = i
	v.Kind = slide.Kind
	v.Name = slide.Label()
	return v
}

// Views renders every slide in deck order.
func (b *Board) Views() []View {
	n := b.Len()
	out := make([]View, n)
	for i := range out {
		out[i] = b.View(i)
	}
	return out
}
