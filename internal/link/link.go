// Package link simulates the impaired duplex radio link between the
// satellite and the ground station. Each direction is an independent FIFO;
// sends pass through a seeded probabilistic loss/latency model before the
// frame becomes visible to the receiver.
package link

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/satlink/internal/observability"
	"github.com/danmuck/satlink/internal/protocol"
)

var ErrInvalidConfig = errors.New("link: invalid config")

// Direction identifies one side of the duplex link.
type Direction int

const (
	// Downlink carries satellite-to-ground traffic.
	Downlink Direction = iota
	// Uplink carries ground-to-satellite traffic.
	Uplink
)

func (d Direction) String() string {
	switch d {
	case Downlink:
		return "downlink"
	case Uplink:
		return "uplink"
	default:
		return "unknown"
	}
}

// Config sets the impairment model for both directions.
type Config struct {
	LatencyMean   time.Duration
	LatencyJitter time.Duration
	LossProb      float64
	Seed          int64
}

func DefaultConfig() Config {
	return Config{
		LatencyMean:   100 * time.Millisecond,
		LatencyJitter: 30 * time.Millisecond,
		LossProb:      0.05,
		Seed:          42,
	}
}

func (c Config) Validate() error {
	if c.LatencyMean < 0 {
		return fmt.Errorf("%w: latency mean %v is negative", ErrInvalidConfig, c.LatencyMean)
	}
	if c.LatencyJitter < 0 {
		return fmt.Errorf("%w: latency jitter %v is negative", ErrInvalidConfig, c.LatencyJitter)
	}
	if c.LossProb < 0 || c.LossProb > 1 {
		return fmt.Errorf("%w: loss probability %v outside [0,1]", ErrInvalidConfig, c.LossProb)
	}
	return nil
}

// Link is the duplex impaired channel. Either endpoint may call Send
// concurrently from its own goroutine; the shared random source is the only
// lock-protected state and the critical section covers exactly the two
// probability draws, never the simulated propagation sleep.
type Link struct {
	cfg Config

	rngMu sync.Mutex
	rng   *rand.Rand

	queues [2]*Queue[protocol.Frame]

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func New(cfg Config) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Link{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		queues: [2]*Queue[protocol.Frame]{
			Downlink: NewQueue[protocol.Frame](),
			Uplink:   NewQueue[protocol.Frame](),
		},
	}, nil
}

// Send offers f to the direction's pipeline. The draw order is fixed: one
// uniform loss sample, then one normal delay sample, so a fixed seed yields
// a reproducible impairment sequence. A lost frame is never enqueued. The
// delay suspends the calling goroutine to model propagation latency.
func (l *Link) Send(dir Direction, f protocol.Frame) {
	l.sent.Add(1)

	l.rngMu.Lock()
	lossSample := l.rng.Float64()
	delay := time.Duration(l.rng.NormFloat64()*float64(l.cfg.LatencyJitter) + float64(l.cfg.LatencyMean))
	l.rngMu.Unlock()

	if lossSample < l.cfg.LossProb {
		l.dropped.Add(1)
		observability.RecordLinkFrame(dir.String(), true)
		return
	}

	if delay > 0 {
		time.Sleep(delay)
	}
	l.queues[dir].Push(f)
	observability.RecordLinkFrame(dir.String(), false)
}

// Recv waits up to timeout for the next frame in dir. A non-positive timeout
// polls without blocking.
func (l *Link) Recv(dir Direction, timeout time.Duration) (protocol.Frame, bool) {
	return l.queues[dir].PopTimeout(timeout)
}

// FramesSent counts every frame offered to Send, including dropped ones.
func (l *Link) FramesSent() uint64 { return l.sent.Load() }

// FramesDropped counts frames discarded by the loss model.
func (l *Link) FramesDropped() uint64 { return l.dropped.Load() }

// Pending reports the in-flight frame count for dir.
func (l *Link) Pending(dir Direction) int { return l.queues[dir].Len() }
