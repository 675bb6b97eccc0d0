package cli

import (
	"context"
	"fmt"

	"sbuboard/internal/backend"
	"sbuboard/internal/cache"
	"sbuboard/internal/config"
	"sbuboard/internal/leaderboard"
	applog "sbuboard/internal/log"
	"sbuboard/internal/slides"
)

// App is the running dashboard core shared by the web server and the kiosk:
// one backend, one cache service per domain and the board on screen.
type App struct {
	Backend  *backend.Result
	Caches   *cache.Manager
	Stores   *leaderboard.Stores
	Registry *leaderboard.Registry
	Board    *slides.Board
	Watcher  *slides.Watcher

	logger *applog.Logger
}

// NewApp builds the backend and board selected by cfg. The board is not
// started; call Start.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	deck, err := LoadDeck(cfg)
	if err != nil {
		return nil, err
	}

	res, err := backend.FromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	stores := leaderboard.NewStores(leaderboard.StoresConfig{
		MaxEntries: cfg.CacheMaxEntries,
		TTL:        cfg.CacheTTL,
		Timeout:    cfg.FetchTimeout,
	}, caches, logger)
	registry := leaderboard.NewRegistry()

	return &App{
		Backend:  res,
		Caches:   caches,
		Stores:   stores,
		Registry: registry,
		Board:    slides.NewBoard(deck, stores, res.Reader, registry, logger),
		logger:   logger,
	}, nil
}

// LoadDeck returns the deck file's deck, or the default deck rotating at
// SLIDE_INTERVAL when no file is configured.
func LoadDeck(cfg *config.Config) (slides.Deck, error) {
	if cfg.DeckFile != "" {
		deck, err := slides.LoadDeck(cfg.DeckFile)
		if err != nil {
			return slides.Deck{}, fmt.Errorf("load deck %s: %w", cfg.DeckFile, err)
		}
		return deck, nil
	}
	deck := slides.DefaultDeck()
	deck.Interval = cfg.SlideInterval
	return deck, nil
}

// Start mounts the board, starts the cache sweep and, when a deck file is
// configured, watches it for edits.
func (a *App) Start(ctx context.Context, cfg *config.Config) error {
	a.Caches.StartCleanup(cfg.CacheCleanupInterval)
	a.Board.Start(ctx)

	if cfg.DeckFile == "" {
		return nil
	}
	w, err := slides.NewWatcher(cfg.DeckFile, a.Board.Apply, a.logger)
	if err != nil {
		return err
	}
	a.Watcher = w
	w.Start(ctx)
	return nil
}

// Close stops the board and releases the backend.
func (a *App) Close() error {
	if a.Watcher != nil {
		_ = a.Watcher.Close()
	}
	a.Board.Stop()
	a.Caches.Stop()
	if err := a.Backend.Close(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}
