package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/kamusis/skillcat/internal/logger"
)

// Watch clears the store whenever the catalog file at path is rewritten, so
// the next Load picks up the new snapshot. It blocks until ctx is done.
//
// The parent directory is watched because the pipeline replaces the file by
// rename, which drops a watch on the file itself.
func (s *Store) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(abs), err)
	}

	log := logger.G(ctx).WithField("file", abs)
	log.Debug("watching catalog file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.WithField("operation", event.Op.String()).Info("catalog file changed, clearing cache")
			if err := s.ClearCache(ctx); err != nil {
				log.WithError(err).Warn("cannot clear catalog cache")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("file watcher error")
		}
	}
}
