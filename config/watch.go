package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the config file and its resolved edge/vertex input
// files and logs a structured warning if any of them change after the
// engine has already loaded them. It never reloads or hot-swaps a live
// orchestrator.Instance: staleness is only made observable, following
// both codenerd's and beadwork's fsnotify usage for config/file staleness
// rather than live-reload (spec's Non-goal on incremental graph updates
// is a search-time guarantee; this is a diagnostic-only watcher).
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *zap.Logger
	done   chan struct{}
}

// NewWatcher starts watching configPath plus the graph's resolved input
// files named in c.
func NewWatcher(configPath string, c Config, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: starting watcher: %w", err)
	}

	paths := []string{configPath}
	if p := c.resolvePath(c.Graph.VertexListInputFile); p != "" {
		paths = append(paths, p)
	}
	if p := c.resolvePath(c.Graph.EdgeListInputFile); p != "" {
		paths = append(paths, p)
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := fsw.Add(p); err != nil {
			fsw.Close()

			return nil, fmt.Errorf("config: watching %s: %w", p, err)
		}
	}

	w := &Watcher{fsw: fsw, logger: logger, done: make(chan struct{})}
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Warn("config or input file changed after load; the running instance keeps its original graph",
					zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)

	return w.fsw.Close()
}
