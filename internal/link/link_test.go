package link

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/satlink/internal/protocol"
	"github.com/danmuck/satlink/internal/testutil/testlog"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		cfg  Config
	}{
		{"negative loss", Config{LossProb: -0.1}},
		{"loss above one", Config{LossProb: 1.5}},
		{"negative latency", Config{LatencyMean: -time.Millisecond}},
		{"negative jitter", Config{LatencyJitter: -time.Millisecond}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLosslessLinkDeliversInOrder(t *testing.T) {
	testlog.Start(t)
	l, err := New(Config{LossProb: 0, Seed: 1})
	if err != nil {
		t.Fatalf("new link: %v", err)
	}

	for seq := uint32(0); seq < 10; seq++ {
		l.Send(Downlink, protocol.NewFrame(protocol.FrameTelemetry, seq, nil))
	}
	for seq := uint32(0); seq < 10; seq++ {
		f, ok := l.Recv(Downlink, time.Second)
		if !ok {
			t.Fatalf("missing frame seq=%d", seq)
		}
		if f.Seq != seq {
			t.Fatalf("order violated: got=%d want=%d", f.Seq, seq)
		}
	}
	if l.FramesDropped() != 0 {
		t.Fatalf("lossless link dropped %d frames", l.FramesDropped())
	}
	if l.FramesSent() != 10 {
		t.Fatalf("sent counter: got=%d want=10", l.FramesSent())
	}
}

func TestDirectionsAreIndependent(t *testing.T) {
	testlog.Start(t)
	l, err := New(Config{LossProb: 0, Seed: 1})
	if err != nil {
		t.Fatalf("new link: %v", err)
	}

	l.Send(Uplink, protocol.NewFrame(protocol.FrameCommand, 7, []byte("REBOOT")))
	if _, ok := l.Recv(Downlink, 0); ok {
		t.Fatalf("uplink frame leaked onto downlink")
	}
	f, ok := l.Recv(Uplink, time.Second)
	if !ok || f.Seq != 7 {
		t.Fatalf("uplink frame missing: ok=%v f=%+v", ok, f)
	}
}

func TestTotalLossDropsEverything(t *testing.T) {
	testlog.Start(t)
	l, err := New(Config{LossProb: 1, Seed: 3})
	if err != nil {
		t.Fatalf("new link: %v", err)
	}
	for seq := uint32(0); seq < 20; seq++ {
		l.Send(Downlink, protocol.NewFrame(protocol.FrameTelemetry, seq, nil))
	}
	if _, ok := l.Recv(Downlink, 0); ok {
		t.Fatalf("frame survived loss probability 1")
	}
	if l.FramesDropped() != 20 {
		t.Fatalf("dropped counter: got=%d want=20", l.FramesDropped())
	}
}

func TestObservedDropFractionTracksLossProb(t *testing.T) {
	testlog.Start(t)
	const (
		total    = 1000
		lossProb = 0.5
	)
	l, err := New(Config{LossProb: lossProb, Seed: 42})
	if err != nil {
		t.Fatalf("new link: %v", err)
	}
	for seq := uint32(0); seq < total; seq++ {
		l.Send(Downlink, protocol.NewFrame(protocol.FrameTelemetry, seq, nil))
	}

	fraction := float64(l.FramesDropped()) / float64(total)
	if fraction < lossProb-0.10 || fraction > lossProb+0.10 {
		t.Fatalf("drop fraction %.3f outside %.2f±0.10", fraction, lossProb)
	}
	delivered := 0
	for {
		if _, ok := l.Recv(Downlink, 0); !ok {
			break
		}
		delivered++
	}
	if uint64(delivered)+l.FramesDropped() != total {
		t.Fatalf("accounting: delivered=%d dropped=%d want total=%d", delivered, l.FramesDropped(), total)
	}
}

func TestSeededRunsReproduce(t *testing.T) {
	testlog.Start(t)
	run := func() []uint32 {
		l, err := New(Config{LossProb: 0.3, Seed: 99})
		if err != nil {
			t.Fatalf("new link: %v", err)
		}
		for seq := uint32(0); seq < 100; seq++ {
			l.Send(Downlink, protocol.NewFrame(protocol.FrameTelemetry, seq, nil))
		}
		var survived []uint32
		for {
			f, ok := l.Recv(Downlink, 0)
			if !ok {
				break
			}
			survived = append(survived, f.Seq)
		}
		return survived
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("seeded runs diverged: %d vs %d survivors", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded runs diverged at %d: %d vs %d", i, first[i], second[i])
		}
	}
}
