package config

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch monitors the config file at path and calls onChange with the newly
// loaded Config each time it is written. It blocks until ctx is cancelled.
//
// A reload that fails to decode or validate is logged and skipped; the
// previous config stays active.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func(*Config)) error {
	v, err := newViper(path)
	if err != nil {
		return err
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}

		cfg, err := decode(v)
		if err != nil {
			logger.Error("config reload failed, keeping previous config",
				zap.String("path", event.Name), zap.Error(err))
			return
		}

		logger.Info("config reloaded", zap.String("path", event.Name))
		onChange(cfg)
	})
	v.WatchConfig()

	logger.Info("watching config for changes", zap.String("path", path))
	<-ctx.Done()
	return nil
}
