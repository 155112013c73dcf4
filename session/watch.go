package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/ink"
)

// WatchBrush loads the brush sprite at path, selects it, and reselects it
// every time the file is written or replaced, until ctx is done.
//
// The parent directory is watched rather than the file so editors that
// save by renaming a temporary file are picked up. Reload failures and
// locked sessions are logged and skipped; the previous brush stays active.
func (s *Session) WatchBrush(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: watch brush: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("session: watch %s: %w", dir, err)
	}

	b, err := ink.LoadBrush(path)
	if err != nil {
		return err
	}
	if err := s.SelectBrush(b); err != nil {
		return err
	}

	target := filepath.Clean(path)
	log := ink.Logger()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			b, err := ink.LoadBrush(path)
			if err != nil {
				log.Warn("session: brush reload failed", "path", path, "err", err)
				continue
			}
			if err := s.SelectBrush(b); err != nil {
				log.Warn("session: brush not selected", "path", path, "err", err)
				continue
			}
			log.Info("session: brush reloaded", "path", path)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("session: brush watcher error", "err", err)
		}
	}
}
