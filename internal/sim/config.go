package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/satlink/internal/endpoint"
	"github.com/danmuck/satlink/internal/ground"
	"github.com/danmuck/satlink/internal/link"
	"github.com/danmuck/satlink/internal/sat"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// groundSeedOffset decorrelates the ground station's command-parameter draws
// from the satellite's drift draws while both derive from one run seed.
const groundSeedOffset = 1000

// Config configures one simulation run.
type Config struct {
	// Duration bounds the run; zero means run until interrupted.
	Duration time.Duration

	AckTimeout        time.Duration
	MaxRetries        int
	TickInterval      time.Duration
	HeartbeatInterval time.Duration

	// AdminListenAddr exposes /health, /status, and /metrics when set.
	AdminListenAddr string

	Link      link.Config
	Satellite sat.Config
	Ground    ground.Config
}

func DefaultConfig() Config {
	cfg := Config{
		Duration:          20 * time.Second,
		AckTimeout:        150 * time.Millisecond,
		MaxRetries:        3,
		TickInterval:      10 * time.Millisecond,
		HeartbeatInterval: 5 * time.Second,
		Link:              link.DefaultConfig(),
		Satellite:         sat.DefaultConfig(),
		Ground:            ground.DefaultConfig(),
	}
	cfg.Ground.Seed = cfg.Link.Seed + groundSeedOffset
	return cfg
}

// WithSeed rebases every component's random source on one run seed.
func (c Config) WithSeed(seed int64) Config {
	c.Link.Seed = seed
	c.Satellite.Seed = seed
	c.Ground.Seed = seed + groundSeedOffset
	return c
}

func (c Config) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidConfig, c.Duration)
	}
	if c.AckTimeout <= 0 {
		return fmt.Errorf("%w: ack timeout %v", ErrInvalidConfig, c.AckTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval %v", ErrInvalidConfig, c.TickInterval)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat interval %v", ErrInvalidConfig, c.HeartbeatInterval)
	}
	if err := c.Link.Validate(); err != nil {
		return err
	}
	if err := c.Satellite.Validate(); err != nil {
		return err
	}
	return c.Ground.Validate()
}

func (c Config) endpointConfig(role endpoint.Role, outbound, inbound link.Direction) endpoint.Config {
	return endpoint.Config{
		Role:         role,
		Outbound:     outbound,
		Inbound:      inbound,
		AckTimeout:   c.AckTimeout,
		MaxRetries:   c.MaxRetries,
		TickInterval: c.TickInterval,
	}
}
