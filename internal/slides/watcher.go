package slides

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "sbuboard/internal/log"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a deck file when it changes. The parent directory is
// watched so editors that replace the file on save are still seen.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(context.Context, Deck)
	debounce time.Duration
	logger   *applog.Logger

	mu      sync.Mutex
	done    chan struct{}
	running bool
	closed  bool
}

func NewWatcher(path string, onChange func(context.Context, Deck), logger *applog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve deck path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		watcher:  fw,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   logger.WithComponent(applog.ComponentSlides),
		done:     make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return
	}
	w.running = true
	go w.run(ctx)
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		<-w.done
	}
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "Deck watcher error", applog.FieldError, err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	deck, err := LoadDeck(w.path)
	if err != nil {
		// keep the running deck until the file is fixed
		w.logger.WarnContext(ctx, "Deck reload failed",
			applog.FieldOperation, applog.OpReload,
			applog.FieldError, err,
			"path", w.path)
		return
	}
	w.logger.InfoContext(ctx, "Deck file changed", applog.FieldOperation, applog.OpReload, "path", w.path)
	w.onChange(ctx, deck)
}
