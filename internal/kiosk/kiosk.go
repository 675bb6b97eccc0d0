// Package kiosk renders the rotating leaderboard deck in a terminal, for
// screens that run without a browser.
package kiosk

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	applog "sbuboard/internal/log"
	"sbuboard/internal/slides"
)

const refreshEvery = time.Second

// Board is the part of slides.Board the kiosk drives.
type Board interface {
	View(i int) slides.View
	Len() int
	Rotator() *slides.Rotator
	Refetch(ctx context.Context, domain string)
}

// Run shows the board until the user quits or ctx is done.
func Run(ctx context.Context, board Board, logger *applog.Logger) error {
	if logger == nil {
		logger = applog.Discard()
	}
	program := tea.NewProgram(New(ctx, board, logger), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

type tickMsg time.Time

type Model struct {
	ctx    context.Context
	board  Board
	logger *applog.Logger

	current int
	view    slides.View
	width   int
}

func New(ctx context.Context, board Board, logger *applog.Logger) Model {
	if logger == nil {
		logger = applog.Discard()
	}
	m := Model{
		ctx:    ctx,
		board:  board,
		logger: logger.WithComponent(applog.ComponentKiosk),
		width:  100,
	}
	m.sync()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n", " ":
			m.goTo(m.current + 1)
		case "left", "h", "p":
			m.goTo(m.current - 1)
		case "r":
			m.board.Refetch(m.ctx, "")
			m.logger.InfoContext(m.ctx, "Manual refetch", applog.FieldOperation, applog.OpRefetch)
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= m.board.Len() {
				m.goTo(n - 1)
			}
		}
		m.sync()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.sync()
		return m, tick()
	}
	return m, nil
}

// goTo moves the shared rotator so the web page follows the kiosk.
func (m *Model) goTo(i int) {
	m.board.Rotator().GoTo(i)
}

func (m *Model) sync() {
	m.current = m.board.Rotator().Current()
	m.view = m.board.View(m.current)
}

// Current is the index of the slide on screen.
func (m Model) Current() int {
	return m.current
}

func (m Model) View() string {
	var b strings.Builder
	v := m.view

	if !v.Hidden {
		title := headerStyle.Render(v.Title)
		if v.Period != "" {
			title += "  " + periodStyle.Render(v.Period)
		}
		b.WriteString(title + "\n\n")
		b.WriteString(m.body(v))
		if v.Loading {
			b.WriteString("\n" + mutedStyle.Render("Refreshing..."))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(m.nav())
	b.WriteString("\n" + mutedStyle.Render("←/→ navigate • 1-9 jump • r refetch • q quit"))
	return b.String()
}

func (m Model) body(v slides.View) string {
	switch {
	case v.Error != "":
		return errorStyle.Render(v.Error)
	case v.Empty != "":
		if v.Loading {
			return mutedStyle.Render("Loading...")
		}
		return mutedStyle.Render(v.Empty)
	}

	var parts []string
	if len(v.Overview) > 0 {
		parts = append(parts, overview(v.Overview))
	}
	if len(v.Podium) > 0 {
		parts = append(parts, podium(v.Podium))
	}
	if len(v.Rankings) > 0 {
		parts = append(parts, rankings(v.Rankings, m.width))
	}
	return strings.Join(parts, "\n\n")
}

func overview(stats []slides.Stat) string {
	cells := make([]string, 0, len(stats))
	for _, s := range stats {
		cells = append(cells, cardStyle.Align(lipgloss.Center).Render(
			s.Icon+" "+value(s.Value, s.Color)+"\n"+mutedStyle.Render(s.Label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func podium(cards []slides.PodiumCard) string {
	cells := make([]string, 0, len(cards))
	for _, c := range cards {
		cells = append(cells, podiumStyle(c.Place).Render(fmt.Sprintf("%s\n%s\n%s\n%s",
			c.Medal, c.Name, value(c.Stat.Value, c.Stat.Color), mutedStyle.Render(c.Stat.Label))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cells...)
}

func rankings(cards []slides.RankingCard, width int) string {
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		var stats []string
		for _, s := range c.Stats {
			stats = append(stats, padRight(s.Icon+" "+value(s.Value, s.Color)+" "+mutedStyle.Render(s.Label), 24))
		}
		line := padRight(mutedStyle.Render("#"+strconv.Itoa(c.Position)), 5) +
			padRight(c.Name, 24) + strings.Join(stats, "")
		if width > 0 && lipgloss.Width(line) > width {
			line = lipgloss.NewStyle().MaxWidth(width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) nav() string {
	n := m.board.Len()
	dots := make([]string, 0, n)
	for i := 0; i < n; i++ {
		label := m.board.View(i).Name
		if i == m.current {
			dots = append(dots, activeDotStyle.Render(label))
		} else {
			dots = append(dots, dotStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, dots...)
}
