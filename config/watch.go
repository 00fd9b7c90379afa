package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the log level from the config file at path whenever the file
// changes, until ctx is done. Other settings only take effect on restart.
//
// The parent directory is watched rather than the file itself, so that
// editors which replace the file on save (new inode) keep being tracked.
func Watch(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("cannot add config directory to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				logger.Debug("fsnotify watcher channel is closed.")
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := reloadLevel(path, level); err != nil {
				logger.Warn("cannot reload config file.", "path", path, "error", err)
				continue
			}
			logger.Info("reloaded log level.", "level", level.Level().String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func reloadLevel(path string, level *slog.LevelVar) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}

	l, err := parseLevel(cfg.Logger.Level)
	if err != nil {
		return err
	}
	level.Set(l)

	return nil
}
