package config

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
)

// A Watcher is responsible for watching for changes to a config file
// and delivering the re-read results.
type Watcher interface {
	Config() <-chan *Config
	Close() error
}

// NewFileWatcher returns a watcher that re-reads and re-validates the
// given config file whenever it changes on disk. A read that fails
// keeps the previously delivered config in place.
func NewFileWatcher(ctx context.Context, filePath string, logger golog.Logger) (Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filePath); err != nil {
		return nil, multierr.Combine(err, fsWatcher.Close())
	}
	w := &fileWatcher{
		configCh: make(chan *Config),
		watcher:  fsWatcher,
	}
	go w.watch(ctx, filePath, logger)
	return w, nil
}

type fileWatcher struct {
	configCh chan *Config
	watcher  *fsnotify.Watcher
}

func (w *fileWatcher) watch(ctx context.Context, filePath string, logger golog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Read(filePath, logger)
			if err != nil {
				logger.Errorw("cannot re-read config, keeping the last good one",
					"file", filePath, "error", err)
				continue
			}
			select {
			case w.configCh <- cfg:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Errorw("config watch error", "error", err)
		}
	}
}

// Config returns the channel of newly read configs.
func (w *fileWatcher) Config() <-chan *Config {
	return w.configCh
}

// Close stops watching.
func (w *fileWatcher) Close() error {
	return w.watcher.Close()
}
