// Package daemon loads configuration and wires the engine, journal, tracer
// and HTTP server into one running process.
package daemon

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/pickuppal/pickuppal/internal/app/progression"
	"github.com/pickuppal/pickuppal/internal/transport"
)

// Config is the contents of ~/.pickuppal/config.toml. Every field can be
// overridden by its PICKUPPAL_* environment variable.
type Config struct {
	API       APIConfig       `toml:"api"`
	Engine    EngineConfig    `toml:"engine"`
	Transport TransportConfig `toml:"transport"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host    string `toml:"host" env:"PICKUPPAL_API_HOST"`
	Port    int    `toml:"port" env:"PICKUPPAL_API_PORT"`
	Timeout string `toml:"timeout" env:"PICKUPPAL_API_TIMEOUT"`
}

// EngineConfig controls the session engine.
type EngineConfig struct {
	LevelUpPolicy string `toml:"level_up_policy" env:"PICKUPPAL_LEVEL_UP_POLICY"`
	QueueSize     int    `toml:"queue_size" env:"PICKUPPAL_QUEUE_SIZE"`
}

// TransportConfig controls the simulated network delay.
type TransportConfig struct {
	Delay string `toml:"delay" env:"PICKUPPAL_TRANSPORT_DELAY"`
}

// TelemetryConfig controls metrics and tracing.
type TelemetryConfig struct {
	Metrics  bool `toml:"metrics" env:"PICKUPPAL_METRICS"`
	Tracing  bool `toml:"tracing" env:"PICKUPPAL_TRACING"`
	MaxSpans int  `toml:"max_spans" env:"PICKUPPAL_MAX_SPANS"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    8484,
			Timeout: "30s",
		},
		Engine: EngineConfig{
			LevelUpPolicy: progression.SingleStep.String(),
			QueueSize:     64,
		},
		Transport: TransportConfig{
			Delay: transport.DefaultDelay.String(),
		},
		Telemetry: TelemetryConfig{
			Metrics:  true,
			Tracing:  true,
			MaxSpans: 1_000,
		},
	}
}

// Home returns the PickupPal directory: $PICKUPPAL_HOME or ~/.pickuppal.
func Home() string {
	if h := os.Getenv("PICKUPPAL_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pickuppal"
	}
	return filepath.Join(home, ".pickuppal")
}

// ConfigPath returns the default config file location.
func ConfigPath() string { return filepath.Join(Home(), "config.toml") }

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables. Unset variables
// leave the current values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks field ranges and formats.
func (c Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	switch c.Engine.LevelUpPolicy {
	case progression.SingleStep.String(), progression.Loop.String():
	default:
		return fmt.Errorf("engine.level_up_policy %q: want %q or %q",
			c.Engine.LevelUpPolicy, progression.SingleStep, progression.Loop)
	}
	if c.Engine.QueueSize < 1 {
		return fmt.Errorf("engine.queue_size must be positive, got %d", c.Engine.QueueSize)
	}
	if d, err := time.ParseDuration(c.Transport.Delay); err != nil {
		return fmt.Errorf("transport.delay: %w", err)
	} else if d < 0 {
		return fmt.Errorf("transport.delay must not be negative, got %s", d)
	}
	return nil
}

// Addr returns host:port for the API listener.
func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port) }

// Policy returns the parsed level-up policy.
func (c Config) Policy() progression.Policy {
	return progression.ParsePolicy(c.Engine.LevelUpPolicy)
}

// TransportDelay returns the parsed transport delay.
func (c Config) TransportDelay() time.Duration {
	d, _ := time.ParseDuration(c.Transport.Delay)
	return d
}

// APITimeout returns the parsed per-request timeout.
func (c Config) APITimeout() time.Duration {
	d, _ := time.ParseDuration(c.API.Timeout)
	return d
}

// Write encodes the config as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes the config to path, creating its directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
