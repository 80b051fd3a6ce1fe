// Package sim wires the impaired link, the satellite, and the ground
// station into one bounded simulation run. The two endpoints run as
// independent goroutines against the shared link; the service owns their
// lifecycle, the heartbeat log, and the optional admin surface.
package sim

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/endpoint"
	"github.com/danmuck/satlink/internal/ground"
	"github.com/danmuck/satlink/internal/link"
	"github.com/danmuck/satlink/internal/observability"
	"github.com/danmuck/satlink/internal/sat"
)

// Service runs one satellite/ground simulation.
type Service struct {
	cfg    Config
	logger zerolog.Logger

	link      *link.Link
	satellite *sat.Satellite
	station   *ground.Station
	satEnd    *endpoint.Endpoint
	groundEnd *endpoint.Endpoint

	mu        sync.Mutex
	startedAt time.Time
}

func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	observability.RegisterMetrics()

	l, err := link.New(cfg.Link)
	if err != nil {
		return nil, err
	}
	satellite, err := sat.New(cfg.Satellite)
	if err != nil {
		return nil, err
	}
	station, err := ground.New(cfg.Ground)
	if err != nil {
		return nil, err
	}

	satEnd, err := endpoint.New(l, satellite, satellite,
		cfg.endpointConfig(endpoint.RoleSatellite, link.Downlink, link.Uplink))
	if err != nil {
		return nil, err
	}
	groundEnd, err := endpoint.New(l, station, station,
		cfg.endpointConfig(endpoint.RoleGround, link.Uplink, link.Downlink))
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		logger:    log.With().Str("component", "sim").Logger(),
		link:      l,
		satellite: satellite,
		station:   station,
		satEnd:    satEnd,
		groundEnd: groundEnd,
	}, nil
}

// Run executes the simulation until the configured duration elapses or the
// process receives SIGINT/SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext executes the simulation until ctx is cancelled or the
// configured duration elapses, whichever comes first. It always drains both
// endpoints and flushes the telemetry log before returning.
func (s *Service) RunContext(ctx context.Context) error {
	// The run owns its own cancellation so internal failures (admin
	// listener) can stop both endpoint goroutines before wg.Wait.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.cfg.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, s.cfg.Duration)
		defer cancelTimeout()
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info().
		Dur("duration", s.cfg.Duration).
		Dur("latency_mean", s.cfg.Link.LatencyMean).
		Float64("loss_prob", s.cfg.Link.LossProb).
		Int64("seed", s.cfg.Link.Seed).
		Msg("simulation started")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.satEnd.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		s.groundEnd.Run(ctx)
	}()

	adminErr := make(chan error, 1)
	if s.cfg.AdminListenAddr != "" {
		go func() {
			adminErr <- s.serveAdmin(ctx, s.cfg.AdminListenAddr)
		}()
	}

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-adminErr:
			if err != nil {
				runErr = err
				cancel()
				break loop
			}
		case <-ticker.C:
			s.logHeartbeat()
		}
	}

	wg.Wait()
	if err := s.station.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("telemetry log close failed")
	}
	s.logSummary()
	return runErr
}

func (s *Service) logHeartbeat() {
	satM := s.satEnd.Metrics()
	groundM := s.groundEnd.Metrics()
	s.logger.Info().
		Uint64("telemetry_delivered", satM.Sent).
		Uint64("commands_delivered", groundM.Sent).
		Uint64("link_sent", s.link.FramesSent()).
		Uint64("link_dropped", s.link.FramesDropped()).
		Msg("heartbeat")
}

// Summary is a point-in-time view of one run across both endpoints, the
// link, and the domain roles.
type Summary struct {
	Uptime           time.Duration
	Satellite        endpoint.Metrics
	Ground           endpoint.Metrics
	SatelliteState   sat.State
	CommandsExecuted uint64
	ReadingsLogged   uint64
	LinkSent         uint64
	LinkDropped      uint64
}

func (s *Service) Summary() Summary {
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	var uptime time.Duration
	if !startedAt.IsZero() {
		uptime = time.Since(startedAt)
	}
	return Summary{
		Uptime:           uptime,
		Satellite:        s.satEnd.Metrics(),
		Ground:           s.groundEnd.Metrics(),
		SatelliteState:   s.satellite.Snapshot(),
		CommandsExecuted: s.satellite.CommandCount(),
		ReadingsLogged:   s.station.ReadingsLogged(),
		LinkSent:         s.link.FramesSent(),
		LinkDropped:      s.link.FramesDropped(),
	}
}

func (s *Service) logSummary() {
	sum := s.Summary()
	s.logger.Info().
		Dur("uptime", sum.Uptime).
		Uint64("telemetry_sent", sum.Satellite.Sent).
		Uint64("telemetry_logged", sum.ReadingsLogged).
		Uint64("commands_sent", sum.Ground.Sent).
		Uint64("commands_executed", sum.CommandsExecuted).
		Uint64("sat_retries", sum.Satellite.Retries).
		Uint64("ground_retries", sum.Ground.Retries).
		Uint64("naks_sent", sum.Satellite.NaksSent+sum.Ground.NaksSent).
		Uint64("delivery_failures", sum.Satellite.DeliveryFailures+sum.Ground.DeliveryFailures).
		Uint64("link_sent", sum.LinkSent).
		Uint64("link_dropped", sum.LinkDropped).
		Bool("safe_mode", sum.SatelliteState.SafeMode).
		Msg("simulation finished")
}
