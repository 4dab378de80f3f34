package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/konst007/chgk/internal/utils"
)

// WatchSettings reloads the settings file at path whenever it changes and
// passes the result to onChange. The directory is watched rather than the
// file so atomic replace-by-rename is seen. Invalid files are logged and
// ignored. Watching stops when ctx is done.
func WatchSettings(ctx context.Context, path string, onChange func(*Settings)) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	name := filepath.Base(path)
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
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if _, err := os.Stat(path); err != nil {
					continue
				}
				settings, err := LoadSettingsFrom(path)
				if err != nil {
					utils.Debug("config: ignoring settings change: %v", err)
					continue
				}
				utils.Debug("config: reloaded %s", path)
				onChange(settings)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				utils.Debug("config: watcher error: %v", err)
			}
		}
	}()

	return nil
}
