package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator drops cached state.
type Invalidator interface {
	Invalidate()
}

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch invalidates inv whenever a file under paths changes. Files are watched
// through their parent directory so editors that replace files are seen.
// Missing paths are skipped. The watcher stops when ctx is done.
func Watch(ctx context.Context, paths []string, inv Invalidator, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		dir := p
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			dir = filepath.Dir(p)
		}
		if _, ok := dirs[dir]; ok {
			continue
		}
		if err := w.Add(dir); err != nil {
			logger.Debug("skip watch path", zap.String("dir", dir), zap.Error(err))
			continue
		}
		dirs[dir] = struct{}{}
	}

	if len(dirs) == 0 {
		_ = w.Close()
		return nil
	}

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&changeOps != 0 {
					logger.Debug("corpus source changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
					inv.Invalidate()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("corpus watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
