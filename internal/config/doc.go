// Package config loads and watches the pindrop configuration file
// (config.yaml).
//
// Load(path) reads the YAML file, applies defaults (port 8080, pin length 4,
// 3000-byte result ceiling, 10m stale age, 10s sweep interval, 5s stats
// interval), then validates ranges. Default() returns the defaults directly
// for running without a config file.
//
// Watch(ctx, path, current, onChange) uses fsnotify to detect file changes
// and calls onChange with the newly parsed Config when it differs from the
// previous one — duplicate write events from editors collapse into nothing.
// It handles the rename→create pattern used by atomic-save editors by
// re-adding the watch after each reload, logs which hot-reloadable fields
// (stale_age, sweep_interval) were applied, and warns about changed fields
// that only take effect on restart.
package config
