// Package ground implements the ground-station role: the telemetry sink
// with its CSV log, and the periodic command origination policy plugged into
// the protocol endpoint.
package ground

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/command"
	"github.com/danmuck/satlink/internal/protocol"
	"github.com/danmuck/satlink/internal/telemetry"
)

var (
	ErrInvalidConfig       = errors.New("ground: invalid config")
	ErrUnexpectedFrameType = errors.New("ground: unexpected frame type on downlink")
)

type Config struct {
	// LogPath is the telemetry CSV log destination; empty disables logging.
	LogPath string
	// CommandInterval spaces the periodic command schedule.
	CommandInterval time.Duration
	// OrientationPhase bounds the early portion of the run during which
	// orientation nudges are sent; ThrustPhase bounds the one burn after it.
	OrientationPhase time.Duration
	ThrustPhase      time.Duration
	BurnSeconds      float64
	Seed             int64
}

func DefaultConfig() Config {
	return Config{
		LogPath:          "telemetry.log",
		CommandInterval:  4 * time.Second,
		OrientationPhase: 8 * time.Second,
		ThrustPhase:      12 * time.Second,
		BurnSeconds:      2.0,
		Seed:             42,
	}
}

func (c Config) Validate() error {
	if c.CommandInterval <= 0 {
		return fmt.Errorf("%w: command interval %v", ErrInvalidConfig, c.CommandInterval)
	}
	if c.BurnSeconds < 0 {
		return fmt.Errorf("%w: burn seconds %v", ErrInvalidConfig, c.BurnSeconds)
	}
	return nil
}

// Station consumes downlinked telemetry and schedules uplink commands. It
// implements the endpoint Handler and Originator contracts.
type Station struct {
	cfg    Config
	logger zerolog.Logger

	mu          sync.Mutex
	rng         *rand.Rand
	logFile     *os.File
	readings    uint64
	start       time.Time
	lastCommand time.Time
	lastReading telemetry.Reading
}

func New(cfg Config) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Station{
		cfg:    cfg,
		logger: log.With().Str("role", "ground").Logger(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	if cfg.LogPath != "" {
		f, err := os.Create(cfg.LogPath)
		if err != nil {
			return nil, fmt.Errorf("ground: open telemetry log: %w", err)
		}
		s.logFile = f
		fmt.Fprintln(s.logFile, telemetry.CSVHeader())
	}
	return s, nil
}

// Close closes the telemetry log.
func (s *Station) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logFile == nil {
		return nil
	}
	err := s.logFile.Close()
	s.logFile = nil
	return err
}

// HandlePayload decodes one telemetry reading and appends it to the log. A
// malformed reading is rejected, which negative-acknowledges the frame.
func (s *Station) HandlePayload(t protocol.FrameType, payload []byte) error {
	if t != protocol.FrameTelemetry {
		return fmt.Errorf("%w: %s", ErrUnexpectedFrameType, t)
	}
	reading, err := telemetry.Decode(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings++
	s.lastReading = reading
	// Rows go straight to the file so a crash mid-run loses at most the
	// reading in flight.
	if s.logFile != nil {
		fmt.Fprintln(s.logFile, reading.CSVRow())
	}
	s.logger.Debug().
		Float64("temperature_c", reading.TemperatureC).
		Float64("battery_pct", reading.BatteryPct).
		Float64("altitude_km", reading.AltitudeKm).
		Msg("telemetry logged")
	return nil
}

// NextTransmission applies the command schedule: orientation nudges during
// the early phase of the run, one thrust burn in the phase after it, then
// silence.
func (s *Station) NextTransmission(now time.Time) (protocol.FrameType, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.start.IsZero() {
		s.start = now
		s.lastCommand = now
		return 0, nil, false
	}
	if now.Sub(s.lastCommand) < s.cfg.CommandInterval {
		return 0, nil, false
	}
	s.lastCommand = now

	elapsed := now.Sub(s.start)
	switch {
	case elapsed < s.cfg.OrientationPhase:
		cmd := command.Command{
			Kind:   command.KindAdjustOrientation,
			DPitch: s.angleSample(),
			DYaw:   s.angleSample(),
			DRoll:  s.angleSample(),
		}
		s.logger.Info().
			Float64("d_pitch", cmd.DPitch).
			Float64("d_yaw", cmd.DYaw).
			Float64("d_roll", cmd.DRoll).
			Msg("scheduling orientation adjustment")
		return protocol.FrameCommand, cmd.Encode(), true
	case elapsed < s.cfg.ThrustPhase:
		cmd := command.Command{Kind: command.KindThrustBurn, BurnSeconds: s.cfg.BurnSeconds}
		s.logger.Info().Float64("burn_seconds", cmd.BurnSeconds).Msg("scheduling thrust burn")
		return protocol.FrameCommand, cmd.Encode(), true
	default:
		return 0, nil, false
	}
}

func (s *Station) angleSample() float64 {
	return s.rng.Float64()*4.0 - 2.0
}

// ReadingsLogged reports how many telemetry readings were consumed.
func (s *Station) ReadingsLogged() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings
}

// LastReading returns the most recently consumed reading.
func (s *Station) LastReading() telemetry.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReading
}
