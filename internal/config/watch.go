package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the config file when it changes on disk and hands the
// fresh Config to a callback.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  zerolog.Logger
	onLoad  func(*Config)
	done    chan struct{}
}

// NewWatcher watches the config file at path. onLoad runs on every
// successful reload.
func NewWatcher(path string, logger zerolog.Logger, onLoad func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files rather than write in place.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		path:    path,
		logger:  logger.With().Str("component", "config-watcher").Logger(),
		onLoad:  onLoad,
		done:    make(chan struct{}),
	}

	go w.watchLoop()

	return w, nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				cfg, err := Load(w.path)
				if err != nil {
					w.logger.Error().Err(err).Msg("config reload failed")
					continue
				}
				w.logger.Info().Str("path", w.path).Msg("config reloaded")
				w.onLoad(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
