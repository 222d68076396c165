package config

import (
	"context"
	"log/slog"
	"slices"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded
// Config each time the file's effective contents change. current is the
// config the process started with; it anchors the first comparison. Watch
// runs until ctx is cancelled.
//
// Editors tend to fire several write events per save, so reloads that parse
// to the same configuration are dropped without calling onChange. When a
// reload does differ, the hot-reloadable fields (stale_age, sweep_interval)
// are logged as applied and any changed restart-only fields (http_port,
// pin_length, max_result_bytes, stats_interval, cors) draw a warning —
// deciding which is which lives here, not in the caller.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active — Watch does not call onChange.
func Watch(ctx context.Context, path string, current *Config, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	prev := current
	if prev == nil {
		prev = Default()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only reload on write or create events. Editors often write via
			// rename (atomic save), so also catch fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed — keeping previous config",
					"path", path, "err", err)
				continue
			}

			applied, restart := diff(&prev.Server, &cfg.Server)
			if len(applied) == 0 && len(restart) == 0 {
				continue
			}

			slog.Info("config: reloaded", "path", path, "applied", applied)
			if len(restart) > 0 {
				slog.Warn("config: changes that need a restart to take effect",
					"fields", restart)
			}

			prev = cfg
			onChange(cfg)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// diff reports which fields changed between two server configs: applied holds
// the hot-reloadable ones (the sweeper picks them up on its next tick),
// restart holds the ones only read at startup.
func diff(old, next *ServerConfig) (applied, restart []string) {
	if old.StaleAge != next.StaleAge {
		applied = append(applied, "stale_age")
	}
	if old.SweepInterval != next.SweepInterval {
		applied = append(applied, "sweep_interval")
	}
	if old.HTTPPort != next.HTTPPort {
		restart = append(restart, "http_port")
	}
	if old.PinLength != next.PinLength {
		restart = append(restart, "pin_length")
	}
	if old.MaxResultBytes != next.MaxResultBytes {
		restart = append(restart, "max_result_bytes")
	}
	if old.StatsInterval != next.StatsInterval {
		restart = append(restart, "stats_interval")
	}
	if !slices.Equal(old.CORS.AllowOrigins, next.CORS.AllowOrigins) {
		restart = append(restart, "cors.allow_origins")
	}
	return applied, restart
}
