// Package endpoint implements the role-parametrized protocol actor. Two
// instances run concurrently against one link: the satellite originates
// telemetry on the downlink, the ground station originates commands on the
// uplink. Each owns one direction as outbound and the other as inbound and
// shares nothing with its peer beyond the link itself.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/link"
	"github.com/danmuck/satlink/internal/observability"
	"github.com/danmuck/satlink/internal/protocol"
)

var (
	ErrInvalidConfig   = errors.New("endpoint: invalid config")
	ErrNilHandler      = errors.New("endpoint: nil payload handler")
	ErrNilLink         = errors.New("endpoint: nil link")
	ErrDeliveryFailure = errors.New("endpoint: delivery failed after retries")
)

// Role labels an endpoint instance for logs and metrics.
type Role string

const (
	RoleSatellite Role = "satellite"
	RoleGround    Role = "ground"
)

// Handler consumes validated, deduplicated inbound payloads. A returned
// error negative-acknowledges the frame; delivery is otherwise
// fire-and-forget.
type Handler interface {
	HandlePayload(t protocol.FrameType, payload []byte) error
}

// Originator is the origination policy consulted once per tick. ok=false
// means nothing to send this tick.
type Originator interface {
	NextTransmission(now time.Time) (t protocol.FrameType, payload []byte, ok bool)
}

// Config fixes one endpoint's role, directions, and ARQ parameters.
type Config struct {
	Role         Role
	Outbound     link.Direction
	Inbound      link.Direction
	AckTimeout   time.Duration
	MaxRetries   int
	TickInterval time.Duration
}

func (c Config) WithDefaults() Config {
	if c.AckTimeout == 0 {
		c.AckTimeout = 150 * time.Millisecond
	}
	if c.TickInterval == 0 {
		c.TickInterval = 10 * time.Millisecond
	}
	return c
}

func (c Config) Validate() error {
	if c.Role == "" {
		return fmt.Errorf("%w: missing role", ErrInvalidConfig)
	}
	if c.Outbound == c.Inbound {
		return fmt.Errorf("%w: outbound and inbound are the same direction", ErrInvalidConfig)
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
	return nil
}

// Endpoint owns the per-direction sequence state and the stop-and-wait
// reliable-send loop. All sequence state is touched only from the endpoint's
// own goroutine; metrics counters are atomic for cross-goroutine snapshots.
type Endpoint struct {
	cfg        Config
	link       *link.Link
	handler    Handler
	originator Originator
	logger     zerolog.Logger

	txSeq      uint32
	rxExpected uint32

	metrics counters
}

func New(l *link.Link, handler Handler, originator Originator, cfg Config) (*Endpoint, error) {
	if l == nil {
		return nil, ErrNilLink
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Endpoint{
		cfg:        cfg,
		link:       l,
		handler:    handler,
		originator: originator,
		logger:     log.With().Str("role", string(cfg.Role)).Logger(),
	}, nil
}

// Run executes the tick loop until ctx is cancelled. Cancellation is
// cooperative: an in-flight ack wait runs to its timeout, so Run returns at
// most about one AckTimeout after cancellation.
func (e *Endpoint) Run(ctx context.Context) {
	e.logger.Info().
		Str("outbound", e.cfg.Outbound.String()).
		Dur("ack_timeout", e.cfg.AckTimeout).
		Int("max_retries", e.cfg.MaxRetries).
		Msg("endpoint started")

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("endpoint stopped")
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick drains the inbound direction, then consults the origination policy.
func (e *Endpoint) Tick(ctx context.Context) {
	e.drainInbound()

	if e.originator == nil {
		return
	}
	t, payload, ok := e.originator.NextTransmission(time.Now())
	if !ok {
		return
	}
	// Delivery failures are counted and logged inside SendReliable; a
	// context error stops the loop on the caller's next select.
	_ = e.SendReliable(ctx, t, payload)
}

func (e *Endpoint) drainInbound() {
	for {
		f, ok := e.link.Recv(e.cfg.Inbound, 0)
		if !ok {
			return
		}
		e.handleInbound(f)
	}
}

func (e *Endpoint) handleInbound(f protocol.Frame) {
	if !f.Valid() {
		e.logger.Warn().Uint32("seq", f.Seq).Str("type", f.Type.String()).Msg("bad crc, nak")
		e.sendNak(f.Seq)
		return
	}

	if !f.Type.Carries() {
		// A late ack/nak from an attempt that already timed out.
		e.logger.Debug().Uint32("seq", f.Seq).Str("type", f.Type.String()).Msg("stray control frame")
		return
	}

	if f.Seq < e.rxExpected {
		// Duplicate: its ack was lost. Re-acknowledge, never re-deliver.
		e.logger.Debug().Uint32("seq", f.Seq).Msg("duplicate frame, re-ack")
		e.sendAck(f.Seq)
		return
	}

	e.rxExpected = f.Seq + 1
	if err := e.handler.HandlePayload(f.Type, f.Payload); err != nil {
		e.logger.Warn().Err(err).Uint32("seq", f.Seq).Str("type", f.Type.String()).Msg("payload rejected, nak")
		e.sendNak(f.Seq)
		return
	}
	e.metrics.received.Add(1)
	e.sendAck(f.Seq)
}

// SendReliable transmits one payload frame using stop-and-wait ARQ. Every
// attempt beyond the first counts as a retry, including on eventual success.
// Exhausting all attempts reports ErrDeliveryFailure; the endpoint itself
// keeps operating.
func (e *Endpoint) SendReliable(ctx context.Context, t protocol.FrameType, payload []byte) error {
	seq := e.txSeq
	e.txSeq++
	f := protocol.NewFrame(t, seq, payload)

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			e.metrics.retries.Add(1)
			observability.RecordRetry(string(e.cfg.Role))
			e.logger.Warn().
				Uint32("seq", seq).
				Int("retry", attempt).
				Int("max_retries", e.cfg.MaxRetries).
				Msg("missed ack, retrying")
		}

		e.link.Send(e.cfg.Outbound, f)

		switch e.awaitAck(seq) {
		case ackMatched:
			e.metrics.sent.Add(1)
			observability.RecordDelivery(string(e.cfg.Role), true)
			return nil
		case nakMatched, ackTimedOut:
			// Next attempt, immediately on nak.
		}
	}

	e.metrics.deliveryFailures.Add(1)
	observability.RecordDelivery(string(e.cfg.Role), false)
	e.logger.Error().
		Uint32("seq", seq).
		Str("type", t.String()).
		Int("attempts", e.cfg.MaxRetries+1).
		Msg("delivery failed")
	return fmt.Errorf("%w: %s seq=%d", ErrDeliveryFailure, t, seq)
}

type ackWait int

const (
	ackMatched ackWait = iota
	nakMatched
	ackTimedOut
)

// awaitAck performs one bounded wait on the inbound direction for the
// acknowledgment of seq.
func (e *Endpoint) awaitAck(seq uint32) ackWait {
	f, ok := e.link.Recv(e.cfg.Inbound, e.cfg.AckTimeout)
	if !ok {
		return ackTimedOut
	}
	switch {
	case f.Type == protocol.FrameAck && f.Seq == seq:
		return ackMatched
	case f.Type == protocol.FrameNak && f.Seq == seq:
		e.metrics.naksReceived.Add(1)
		observability.RecordNak(string(e.cfg.Role), "received")
		return nakMatched
	default:
		return e.discardDuringAckWait(f)
	}
}

// discardDuringAckWait is the policy for frames observed while waiting for
// an acknowledgment: they are dropped, not requeued for the next drain
// pass, and the attempt counts as unanswered. Kept as its own decision
// point so a requeueing variant can replace it without touching the retry
// loop.
func (e *Endpoint) discardDuringAckWait(f protocol.Frame) ackWait {
	e.logger.Debug().
		Uint32("seq", f.Seq).
		Str("type", f.Type.String()).
		Msg("frame discarded during ack wait")
	return ackTimedOut
}

func (e *Endpoint) sendAck(seq uint32) {
	e.link.Send(e.cfg.Outbound, protocol.NewFrame(protocol.FrameAck, seq, nil))
}

func (e *Endpoint) sendNak(seq uint32) {
	e.metrics.naksSent.Add(1)
	observability.RecordNak(string(e.cfg.Role), "sent")
	e.link.Send(e.cfg.Outbound, protocol.NewFrame(protocol.FrameNak, seq, nil))
}
