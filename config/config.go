package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nstehr/vimy/drone-core/rules"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Tactics rules.Tactics `toml:"tactics"`
	Trace   TraceConfig   `toml:"trace"`
}

type ServerConfig struct {
	SocketPath string `toml:"socket_path"`
	WSAddr     string `toml:"ws_addr"` // empty disables the websocket listener
	Team       string `toml:"team"`    // used when the host's hello leaves it blank
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json
}

type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	Prefix  string `toml:"prefix"`
}

// Load reads a TOML file over the defaults, so any key left out keeps its
// default value. Tactics are clamped to their valid ranges.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Logging.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Tactics.Validate()
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			SocketPath: "/tmp/drone-core.sock",
			Team:       "drones",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tactics: rules.DefaultTactics(),
		Trace: TraceConfig{
			Dir:    "trace",
			Prefix: "decisions",
		},
	}
}

func (l LoggingConfig) validate() error {
	if _, err := l.level(); err != nil {
		return err
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("logging format %q: want text or json", l.Format)
}

func (l LoggingConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// SlogLevel is the configured level, info if it does not parse.
func (l LoggingConfig) SlogLevel() slog.Level {
	lvl, _ := l.level()
	return lvl
}

// JSON reports whether logs should be structured JSON rather than text.
func (l LoggingConfig) JSON() bool {
	return strings.EqualFold(l.Format, "json")
}
