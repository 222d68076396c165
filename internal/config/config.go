package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultPinLength      = 4
	DefaultMaxResultBytes = 3000
	DefaultStaleAge       = 10 * time.Minute
	DefaultSweepInterval  = 10 * time.Second
	DefaultStatsInterval  = 5 * time.Second
)

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all pindrop settings.
type ServerConfig struct {
	// HTTPPort is the port the HTTP API listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// PinLength is the pin label length (default 4). Fixed at startup —
	// changing it live would orphan outstanding pins.
	PinLength int `yaml:"pin_length"`

	// MaxResultBytes caps the serialized size of a submitted result
	// (default 3000). Larger submissions are rejected with 413.
	MaxResultBytes int `yaml:"max_result_bytes"`

	// StaleAge is how long an untouched entry survives before the sweeper
	// evicts it (default 10m). Hot-reloadable.
	StaleAge time.Duration `yaml:"stale_age"`

	// SweepInterval is how often the sweeper runs (default 10s).
	// Hot-reloadable.
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// StatsInterval is how often the WebSocket stats hub broadcasts
	// store occupancy to connected clients (default 5s).
	StatsInterval time.Duration `yaml:"stats_interval"`

	// CORS configures cross-origin headers on the HTTP API.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig controls the Access-Control-Allow-* headers.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API from a browser.
	// "*" allows any origin. Empty disables CORS headers entirely.
	AllowOrigins []string `yaml:"allow_origins"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:       DefaultHTTPPort,
			PinLength:      DefaultPinLength,
			MaxResultBytes: DefaultMaxResultBytes,
			StaleAge:       DefaultStaleAge,
			SweepInterval:  DefaultSweepInterval,
			StatsInterval:  DefaultStatsInterval,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.PinLength < 1 || s.PinLength > 16 {
		return fmt.Errorf("server.pin_length %d is out of range [1, 16]", s.PinLength)
	}
	if s.MaxResultBytes < 1 {
		return fmt.Errorf("server.max_result_bytes must be positive")
	}
	if s.StaleAge <= 0 {
		return fmt.Errorf("server.stale_age must be positive")
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("server.sweep_interval must be positive")
	}
	if s.StatsInterval <= 0 {
		return fmt.Errorf("server.stats_interval must be positive")
	}
	return nil
}
