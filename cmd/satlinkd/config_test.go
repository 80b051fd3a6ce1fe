package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfigEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := loadRunConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Duration != 20*time.Second {
		t.Fatalf("duration = %v, want 20s", cfg.Duration)
	}
	if cfg.AckTimeout != 150*time.Millisecond {
		t.Fatalf("ack timeout = %v, want 150ms", cfg.AckTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("max retries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Link.LossProb != 0.05 {
		t.Fatalf("loss prob = %v, want 0.05", cfg.Link.LossProb)
	}
	if cfg.Ground.LogPath != "telemetry.log" {
		t.Fatalf("log path = %q, want telemetry.log", cfg.Ground.LogPath)
	}
}

func TestLoadRunConfigOverrides(t *testing.T) {
	cfg, err := loadRunConfig(writeConfig(t, `
duration = "5s"
max_retries = 1
seed = 7
admin_listen_addr = "127.0.0.1:7410"

[link]
latency_mean = "10ms"
loss_prob = 0.2

[satellite]
telemetry_rate = 10.0

[ground]
log_path = "run.log"
command_interval = "1s"
`))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Duration != 5*time.Second {
		t.Fatalf("duration = %v, want 5s", cfg.Duration)
	}
	if cfg.MaxRetries != 1 {
		t.Fatalf("max retries = %d, want 1", cfg.MaxRetries)
	}
	if cfg.Link.Seed != 7 || cfg.Satellite.Seed != 7 || cfg.Ground.Seed != 1007 {
		t.Fatalf("seeds = %d/%d/%d, want 7/7/1007",
			cfg.Link.Seed, cfg.Satellite.Seed, cfg.Ground.Seed)
	}
	if cfg.AdminListenAddr != "127.0.0.1:7410" {
		t.Fatalf("admin addr = %q", cfg.AdminListenAddr)
	}
	if cfg.Link.LatencyMean != 10*time.Millisecond {
		t.Fatalf("latency mean = %v, want 10ms", cfg.Link.LatencyMean)
	}
	// Jitter keeps its default when the key is absent.
	if cfg.Link.LatencyJitter != 30*time.Millisecond {
		t.Fatalf("latency jitter = %v, want 30ms", cfg.Link.LatencyJitter)
	}
	if cfg.Link.LossProb != 0.2 {
		t.Fatalf("loss prob = %v, want 0.2", cfg.Link.LossProb)
	}
	if cfg.Satellite.TelemetryRate != 10.0 {
		t.Fatalf("telemetry rate = %v, want 10", cfg.Satellite.TelemetryRate)
	}
	if cfg.Ground.LogPath != "run.log" {
		t.Fatalf("log path = %q, want run.log", cfg.Ground.LogPath)
	}
	if cfg.Ground.CommandInterval != time.Second {
		t.Fatalf("command interval = %v, want 1s", cfg.Ground.CommandInterval)
	}
}

func TestLoadRunConfigBadDuration(t *testing.T) {
	if _, err := loadRunConfig(writeConfig(t, `duration = "soon"`)); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
