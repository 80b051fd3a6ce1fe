package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/satlink/internal/sim"
)

// fileConfig mirrors the TOML surface. Every field is optional; only keys
// the file actually defines override the defaults.
type fileConfig struct {
	Duration        string `toml:"duration"`
	AckTimeout      string `toml:"ack_timeout"`
	MaxRetries      int    `toml:"max_retries"`
	Seed            int64  `toml:"seed"`
	AdminListenAddr string `toml:"admin_listen_addr"`

	Link struct {
		LatencyMean   string  `toml:"latency_mean"`
		LatencyJitter string  `toml:"latency_jitter"`
		LossProb      float64 `toml:"loss_prob"`
	} `toml:"link"`

	Satellite struct {
		TelemetryRate float64 `toml:"telemetry_rate"`
	} `toml:"satellite"`

	Ground struct {
		LogPath          string  `toml:"log_path"`
		CommandInterval  string  `toml:"command_interval"`
		OrientationPhase string  `toml:"orientation_phase"`
		ThrustPhase      string  `toml:"thrust_phase"`
		BurnSeconds      float64 `toml:"burn_seconds"`
	} `toml:"ground"`
}

func loadRunConfig(path string) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return sim.Config{}, fmt.Errorf("load run config: %w", err)
	}

	if meta.IsDefined("seed") {
		cfg = cfg.WithSeed(raw.Seed)
	}
	if meta.IsDefined("max_retries") {
		cfg.MaxRetries = raw.MaxRetries
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("link", "loss_prob") {
		cfg.Link.LossProb = raw.Link.LossProb
	}
	if meta.IsDefined("satellite", "telemetry_rate") {
		cfg.Satellite.TelemetryRate = raw.Satellite.TelemetryRate
	}
	if meta.IsDefined("ground", "log_path") {
		cfg.Ground.LogPath = strings.TrimSpace(raw.Ground.LogPath)
	}
	if meta.IsDefined("ground", "burn_seconds") {
		cfg.Ground.BurnSeconds = raw.Ground.BurnSeconds
	}

	durations := []struct {
		raw  string
		out  *time.Duration
		keys []string
	}{
		{raw.Duration, &cfg.Duration, []string{"duration"}},
		{raw.AckTimeout, &cfg.AckTimeout, []string{"ack_timeout"}},
		{raw.Link.LatencyMean, &cfg.Link.LatencyMean, []string{"link", "latency_mean"}},
		{raw.Link.LatencyJitter, &cfg.Link.LatencyJitter, []string{"link", "latency_jitter"}},
		{raw.Ground.CommandInterval, &cfg.Ground.CommandInterval, []string{"ground", "command_interval"}},
		{raw.Ground.OrientationPhase, &cfg.Ground.OrientationPhase, []string{"ground", "orientation_phase"}},
		{raw.Ground.ThrustPhase, &cfg.Ground.ThrustPhase, []string{"ground", "thrust_phase"}},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.keys...) {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return sim.Config{}, fmt.Errorf("parse %s: %w", strings.Join(d.keys, "."), err)
		}
		*d.out = parsed
	}

	return cfg, nil
}
