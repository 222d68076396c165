package config

import (
	"context"
	"os"
	"testing"
	"time"
)

// startWatch runs Watch against path in the background and returns a channel
// of delivered configs. The watcher is torn down via t.Cleanup.
func startWatch(t *testing.T, path string, current *Config) <-chan *Config {
	t.Helper()

	got := make(chan *Config, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, current, func(c *Config) { got <- c })
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})

	// Give the watcher a moment to register before the first rewrite.
	time.Sleep(100 * time.Millisecond)
	return got
}

func rewrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
}

func waitFor(t *testing.T, got <-chan *Config) *Config {
	t.Helper()
	select {
	case c := <-got:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("Watch: no onChange within deadline")
		return nil
	}
}

func assertNothing(t *testing.T, got <-chan *Config) {
	t.Helper()
	select {
	case c := <-got:
		t.Fatalf("Watch: unexpected onChange with %+v", c.Server)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_DeliversChangedConfig(t *testing.T) {
	p := writeConfig(t, "server:\n  stale_age: 10m\n")
	initial, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := startWatch(t, p, initial)

	rewrite(t, p, "server:\n  stale_age: 30m\n  sweep_interval: 5s\n")

	cfg := waitFor(t, got)
	if cfg.Server.StaleAge != 30*time.Minute {
		t.Errorf("stale_age: got %v, want 30m", cfg.Server.StaleAge)
	}
	if cfg.Server.SweepInterval != 5*time.Second {
		t.Errorf("sweep_interval: got %v, want 5s", cfg.Server.SweepInterval)
	}
}

func TestWatch_SkipsInvalidReload(t *testing.T) {
	p := writeConfig(t, "server:\n  stale_age: 10m\n")
	initial, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := startWatch(t, p, initial)

	// A broken rewrite must not reach onChange — the previous config stays
	// active.
	rewrite(t, p, "{{nope")
	assertNothing(t, got)

	// The watcher must survive the failed reload and pick up the next
	// valid one.
	rewrite(t, p, "server:\n  stale_age: 20m\n")
	cfg := waitFor(t, got)
	if cfg.Server.StaleAge != 20*time.Minute {
		t.Errorf("stale_age after recovery: got %v, want 20m", cfg.Server.StaleAge)
	}
}

func TestWatch_IgnoresNoopRewrite(t *testing.T) {
	content := "server:\n  stale_age: 10m\n"
	p := writeConfig(t, content)
	initial, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := startWatch(t, p, initial)

	// Same effective config — duplicate write events collapse into nothing.
	rewrite(t, p, content)
	assertNothing(t, got)
}

func TestDiff(t *testing.T) {
	old := &Default().Server

	next := Default().Server
	next.StaleAge = 30 * time.Minute
	next.HTTPPort = 9091

	applied, restart := diff(old, &next)
	if len(applied) != 1 || applied[0] != "stale_age" {
		t.Errorf("applied: got %v, want [stale_age]", applied)
	}
	if len(restart) != 1 || restart[0] != "http_port" {
		t.Errorf("restart: got %v, want [http_port]", restart)
	}

	same := Default().Server
	applied, restart = diff(old, &same)
	if len(applied) != 0 || len(restart) != 0 {
		t.Errorf("diff of identical configs: got %v / %v, want empty", applied, restart)
	}
}
