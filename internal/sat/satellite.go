// Package sat implements the satellite role: a drifting physical state
// model, an anomaly/safe-mode policy, command execution, and the telemetry
// origination policy plugged into the protocol endpoint.
package sat

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/command"
	"github.com/danmuck/satlink/internal/protocol"
	"github.com/danmuck/satlink/internal/telemetry"
)

var (
	ErrInvalidConfig       = errors.New("sat: invalid config")
	ErrUnexpectedFrameType = errors.New("sat: unexpected frame type on uplink")
)

const (
	safeModeTempC      = 85.0
	safeModeBatteryPct = 10.0
)

type Config struct {
	// TelemetryRate is the emission rate in readings per second.
	TelemetryRate float64
	Seed          int64
}

func DefaultConfig() Config {
	return Config{TelemetryRate: 5.0, Seed: 42}
}

func (c Config) Validate() error {
	if c.TelemetryRate <= 0 {
		return fmt.Errorf("%w: telemetry rate %v", ErrInvalidConfig, c.TelemetryRate)
	}
	return nil
}

// State is a snapshot of the satellite's physical model.
type State struct {
	SafeMode     bool
	TemperatureC float64
	BatteryPct   float64
	AltitudeKm   float64
	PitchDeg     float64
	YawDeg       float64
	RollDeg      float64
}

// Satellite holds the simulated spacecraft state. It implements both the
// endpoint Handler (command execution) and Originator (telemetry emission)
// contracts over one mutex-protected state.
type Satellite struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger zerolog.Logger
	period time.Duration

	state         State
	commandCount  uint64
	lastUpdate    time.Time
	lastTelemetry time.Time
}

func New(cfg Config) (*Satellite, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Satellite{
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: log.With().Str("role", "satellite").Logger(),
		period: time.Duration(float64(time.Second) / cfg.TelemetryRate),
		state: State{
			TemperatureC: 50.0,
			BatteryPct:   90.0,
			AltitudeKm:   400.0,
		},
	}, nil
}

// HandlePayload executes one uplinked command. A malformed command or an
// unexpected frame type is rejected, which negative-acknowledges the frame.
func (s *Satellite) HandlePayload(t protocol.FrameType, payload []byte) error {
	if t != protocol.FrameCommand {
		return fmt.Errorf("%w: %s", ErrUnexpectedFrameType, t)
	}
	cmd, err := command.Decode(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandCount++
	s.apply(cmd)
	return nil
}

func (s *Satellite) apply(cmd command.Command) {
	switch cmd.Kind {
	case command.KindAdjustOrientation:
		s.state.PitchDeg += cmd.DPitch
		s.state.YawDeg += cmd.DYaw
		s.state.RollDeg += cmd.DRoll
		s.logger.Info().
			Float64("d_pitch", cmd.DPitch).
			Float64("d_yaw", cmd.DYaw).
			Float64("d_roll", cmd.DRoll).
			Msg("orientation adjusted")
	case command.KindThrustBurn:
		if s.state.SafeMode {
			s.logger.Warn().Float64("burn_seconds", cmd.BurnSeconds).Msg("thrust burn blocked in safe mode")
			return
		}
		s.state.AltitudeKm += cmd.BurnSeconds * 0.5
		s.state.BatteryPct -= cmd.BurnSeconds * 2.0
		s.logger.Info().Float64("burn_seconds", cmd.BurnSeconds).Msg("thrust burn applied")
	case command.KindEnterSafeMode:
		s.state.SafeMode = true
		s.logger.Warn().Msg("safe mode commanded")
	case command.KindReboot:
		s.state.SafeMode = false
		s.logger.Info().Msg("reboot complete")
	}
}

// NextTransmission advances the physical model and decides whether a
// telemetry reading is due this tick.
func (s *Satellite) NextTransmission(now time.Time) (protocol.FrameType, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastUpdate.IsZero() {
		s.updateState(now.Sub(s.lastUpdate).Seconds())
	}
	s.lastUpdate = now
	s.checkAnomalies()

	if !s.lastTelemetry.IsZero() && now.Sub(s.lastTelemetry) < s.period {
		return 0, nil, false
	}
	s.lastTelemetry = now

	reading := telemetry.Reading{
		TS:           now,
		TemperatureC: s.state.TemperatureC,
		BatteryPct:   s.state.BatteryPct,
		AltitudeKm:   s.state.AltitudeKm,
		PitchDeg:     s.state.PitchDeg,
		YawDeg:       s.state.YawDeg,
		RollDeg:      s.state.RollDeg,
	}
	return protocol.FrameTelemetry, reading.Encode(), true
}

// updateState drifts the model by dt seconds. Out-of-range dt values are
// skipped: ticks are expected at millisecond scale, so a multi-second gap
// means the clock jumped.
func (s *Satellite) updateState(dt float64) {
	if dt <= 0 || dt > 1.0 {
		return
	}

	s.state.TemperatureC += (s.rng.Float64() - 0.5) * dt

	drain := 0.1
	if s.state.SafeMode {
		// Heaters keep running in safe mode.
		drain = 0.2
	}
	s.state.BatteryPct = max(0, s.state.BatteryPct-drain*dt)

	// Atmospheric drag.
	s.state.AltitudeKm -= 0.001 * dt

	s.state.PitchDeg += s.driftSample() * dt
	s.state.YawDeg += s.driftSample() * dt
	s.state.RollDeg += s.driftSample() * dt
}

func (s *Satellite) driftSample() float64 {
	return (s.rng.Float64() - 0.5) * 0.1
}

func (s *Satellite) checkAnomalies() {
	if s.state.SafeMode {
		return
	}
	highTemp := s.state.TemperatureC > safeModeTempC
	lowBattery := s.state.BatteryPct < safeModeBatteryPct
	if highTemp || lowBattery {
		s.state.SafeMode = true
		s.logger.Warn().
			Bool("high_temp", highTemp).
			Bool("low_battery", lowBattery).
			Float64("temperature_c", s.state.TemperatureC).
			Float64("battery_pct", s.state.BatteryPct).
			Msg("anomaly: entering safe mode")
	}
}

// Snapshot returns the current model state.
func (s *Satellite) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CommandCount reports how many commands were executed.
func (s *Satellite) CommandCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commandCount
}
