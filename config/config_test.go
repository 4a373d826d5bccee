package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "drone-core.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.SocketPath != "/tmp/drone-core-test.sock" || cfg.Server.WSAddr != "127.0.0.1:7420" || cfg.Server.Team != "blue" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug || !cfg.Logging.JSON() {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Tactics.RetreatHealth != 0.6 || cfg.Tactics.SearchRadius != 400 || cfg.Tactics.Seed != 42 {
		t.Errorf("tactics overrides not applied: %+v", cfg.Tactics)
	}
	if cfg.Tactics.Samples != 64 {
		t.Errorf("samples = %d, want clamped to 64", cfg.Tactics.Samples)
	}
	// keys left out keep their defaults
	if cfg.Tactics.FullRatio != 0.9 || cfg.Tactics.MinAttackAngle != 10 {
		t.Errorf("defaults lost: %+v", cfg.Tactics)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Prefix != "decisions" {
		t.Errorf("trace = %+v", cfg.Trace)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	tests := []string{
		"[logging]\nlevel = \"loud\"\n",
		"[logging]\nformat = \"xml\"\n",
		"[server\n",
	}
	for _, body := range tests {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("expected error for %q", body)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.SocketPath != "/tmp/drone-core.sock" || cfg.Server.WSAddr != "" {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Logging.SlogLevel() != slog.LevelInfo || cfg.Logging.JSON() {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Trace.Enabled {
		t.Error("trace should be off by default")
	}
}
