package kiosk

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbuboard/internal/core"
	"sbuboard/internal/leaderboard"
	"sbuboard/internal/slides"
	"sbuboard/internal/sources/memory"
)

type countingBoard struct {
	*slides.Board
	refetches []string
}

func (b *countingBoard) Refetch(ctx context.Context, domain string) {
	b.refetches = append(b.refetches, domain)
	b.Board.Refetch(ctx, domain)
}

func newTestBoard(t *testing.T) *countingBoard {
	t.Helper()
	ctx := context.Background()

	src := memory.New()
	var att []core.AttendanceRecord
	for i, s := range []float64{95, 88, 72, 55, 40} {
		att = append(att, core.AttendanceRecord{
			SBUID:               fmt.Sprintf("sbu-%d", i+1),
			SBUName:             fmt.Sprintf("Unit %d", i+1),
			Rank:                i + 1,
			TotalEmployees:      10,
			AvgWorkedHours:      7.5,
			HealthScore:         core.Float(s),
			EmployeesWithIssues: i,
		})
	}
	deck := slides.DefaultDeck()
	deck.Interval = time.Hour
	require.NoError(t, src.ReplaceAttendance(ctx, deck.Attendance, att))
	require.NoError(t, src.ReplaceCompletion(ctx, deck.Completion, []core.CompletionRecord{
		{SBUID: "a", SBUName: "Alpha", TotalActiveEmployees: 4, SubmittedEmployees: 3, NotSubmittedEmployees: 1, CompletionPercentage: 75},
	}))

	stores := leaderboard.NewStores(leaderboard.StoresConfig{MaxEntries: 8}, nil, nil)
	b := slides.NewBoard(deck, stores, src, nil, nil)
	b.Start(ctx)
	t.Cleanup(b.Stop)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, b.Wait(waitCtx))
	return &countingBoard{Board: b}
}

func press(m Model, msg tea.KeyMsg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ArrowNavigationWraps(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)
	require.Equal(t, 0, m.Current())

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.Current())
	assert.Equal(t, 1, b.Rotator().Current(), "kiosk drives the shared rotator")

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 3, m.Current())
}

func TestModel_NumberJumps(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)

	m = press(m, runes("3"))
	assert.Equal(t, 2, m.Current())

	m = press(m, runes("9"))
	assert.Equal(t, 2, m.Current(), "out of range slide number is ignored")
}

func TestModel_RefetchKey(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)

	press(m, runes("r"))
	assert.Equal(t, []string{""}, b.refetches)
}

func TestModel_QuitKey(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ViewRendersSlides(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)

	out := m.View()
	assert.Contains(t, out, "Brag Document Completion")
	assert.Contains(t, out, "May 2025")
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Attendance Rankings", "nav lists every slide")

	// attendance remaining: positions 4 and 5
	m = press(m, runes("4"))
	out = m.View()
	assert.Contains(t, out, "Attendance Rankings")
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "Unit 5")

	// brag remaining with a single record is hidden but keeps the nav
	m = press(m, runes("3"))
	out = m.View()
	assert.NotContains(t, out, "Brag Document Rankings")
	assert.Contains(t, out, "Brag Documents")
}

func TestModel_TickResyncs(t *testing.T) {
	b := newTestBoard(t)
	m := New(context.Background(), b, nil)

	b.Rotator().GoTo(1)
	next, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 1, next.(Model).Current())
}
