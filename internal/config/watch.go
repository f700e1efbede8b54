package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever its config file is written or replaced,
// until ctx is done. The parent directory is watched so that editors which
// save by rename are picked up.
func Watch(ctx context.Context, s *Store) error {
	path := s.Path()
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			changed, err := s.Reload()
			if err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			if changed {
				log.Printf("Config reloaded, hotkey: %s", s.Binding())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Config watcher: %v", err)
		}
	}
}
