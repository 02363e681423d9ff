// watch.go - card database hot reload
package content

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the card database whenever the file changes on disk, until
// the context is canceled. Running matches keep the templates they were
// created with; only new matches see the update.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files rather than writing in place.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != l.path || !event.Op.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := l.Reload(); err != nil {
					l.log.Error().Err(err).Msg("card database reload failed, keeping previous version")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.log.Error().Err(err).Msg("card database watcher error")
			}
		}
	}()
	return nil
}
