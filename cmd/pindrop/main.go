package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pindrop/pindrop/internal/api"
	"github.com/pindrop/pindrop/internal/config"
	"github.com/pindrop/pindrop/internal/metrics"
	"github.com/pindrop/pindrop/internal/pin"
	"github.com/pindrop/pindrop/internal/store"
	"github.com/pindrop/pindrop/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("pindrop starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("config file not found — using defaults", "path", *configPath)
		cfg = config.Default()
	case err != nil:
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"pin_length", cfg.Server.PinLength,
		"max_result_bytes", cfg.Server.MaxResultBytes,
		"stale_age", cfg.Server.StaleAge,
		"sweep_interval", cfg.Server.SweepInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Pin store with background staleness sweeping.
	st := store.New()
	reg := metrics.New(st.Count)

	sweeper := store.NewSweeper(st, store.Policy{
		StaleAge: cfg.Server.StaleAge,
		Interval: cfg.Server.SweepInterval,
	})
	sweeper.OnEvict = func(removed int) { reg.Evicted.Add(int64(removed)) }
	go sweeper.Run(ctx)

	pins := pin.NewGenerator(st, cfg.Server.PinLength)

	// Live reload: sweep policy applies immediately; Watch warns about
	// changed fields that need a restart.
	go func() {
		err := config.Watch(ctx, *configPath, cfg, func(next *config.Config) {
			sweeper.SetPolicy(store.Policy{
				StaleAge: next.Server.StaleAge,
				Interval: next.Server.SweepInterval,
			})
		})
		if err != nil {
			slog.Error("config watch stopped", "err", err)
		}
	}()

	// Stats hub — broadcasts store occupancy to ops clients.
	hub := ws.New(st, cfg.Server.StatsInterval)
	go hub.Run(ctx)

	handler := api.Chain(
		api.New(st, pins, reg, cfg.Server.MaxResultBytes),
		api.RequestLog(),
		api.CORS(cfg.Server.CORS.AllowOrigins),
	)

	httpMux := http.NewServeMux()
	httpMux.Handle("/ws/stats", hub)
	httpMux.Handle("/", handler)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("pindrop shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
