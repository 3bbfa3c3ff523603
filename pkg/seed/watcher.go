package seed

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	// OnChange receives every successfully validated reload.
	OnChange func(Data)
	Logger   *slog.Logger
}

// Watcher reloads a seed file when it changes on disk. Invalid files are
// logged and skipped; the last good data stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(Data)
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory holding cfg.Path so that editors that
// replace the file atomically are still observed.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("seed path required")
	}
	if cfg.OnChange == nil {
		return nil, errors.New("seed watcher needs an OnChange callback")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: cfg.OnChange,
		logger:   logger.With("component", "seed_watcher", "path", path),
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is cancelled, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("seed watcher error", "err", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := Load(w.path)
	if err != nil {
		w.logger.Warn("seed reload skipped", "err", err)
		return
	}
	w.logger.Info("seed reloaded",
		"products", len(data.Products),
		"users", len(data.Users),
		"conversations", len(data.Conversations),
	)
	w.onChange(data)
}
