package ground

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/satlink/internal/command"
	"github.com/danmuck/satlink/internal/protocol"
	"github.com/danmuck/satlink/internal/telemetry"
	"github.com/danmuck/satlink/internal/testutil/testlog"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.CommandInterval = 0
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestTelemetryLoggedToCSV(t *testing.T) {
	testlog.Start(t)
	logPath := filepath.Join(t.TempDir(), "telemetry.log")
	cfg := DefaultConfig()
	cfg.LogPath = logPath
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}

	reading := telemetry.Reading{TS: time.Unix(0, 123), TemperatureC: 51.5, BatteryPct: 88}
	if err := s.HandlePayload(protocol.FrameTelemetry, reading.Encode()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines: got=%d want=2\n%s", len(lines), raw)
	}
	if lines[0] != telemetry.CSVHeader() {
		t.Fatalf("header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "123,51.50,88.00") {
		t.Fatalf("row: %q", lines[1])
	}
	if s.ReadingsLogged() != 1 {
		t.Fatalf("readings counter: %d", s.ReadingsLogged())
	}
}

func TestTelemetryRowsVisibleBeforeClose(t *testing.T) {
	testlog.Start(t)
	logPath := filepath.Join(t.TempDir(), "telemetry.log")
	cfg := DefaultConfig()
	cfg.LogPath = logPath
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	defer s.Close()

	reading := telemetry.Reading{TS: time.Unix(0, 7), TemperatureC: 49.25, BatteryPct: 90}
	if err := s.HandlePayload(protocol.FrameTelemetry, reading.Encode()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// Each row reaches the file as it is handled, not at Close.
	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines before close: got=%d want=2\n%s", len(lines), raw)
	}
	if !strings.HasPrefix(lines[1], "7,49.25,90.00") {
		t.Fatalf("row: %q", lines[1])
	}
}

func TestMalformedTelemetryRejected(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.LogPath = ""
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	if err := s.HandlePayload(protocol.FrameTelemetry, []byte("garbage")); !errors.Is(err, telemetry.ErrMalformedReading) {
		t.Fatalf("expected ErrMalformedReading, got %v", err)
	}
	if err := s.HandlePayload(protocol.FrameCommand, []byte("REBOOT")); !errors.Is(err, ErrUnexpectedFrameType) {
		t.Fatalf("expected ErrUnexpectedFrameType, got %v", err)
	}
	if s.ReadingsLogged() != 0 {
		t.Fatalf("rejected payloads counted: %d", s.ReadingsLogged())
	}
}

func TestCommandSchedulePhases(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.LogPath = ""
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}

	base := time.Unix(1700000000, 0)
	// First call only arms the schedule.
	if _, _, ok := s.NextTransmission(base); ok {
		t.Fatalf("first call must not send")
	}
	// Within the interval: quiet.
	if _, _, ok := s.NextTransmission(base.Add(time.Second)); ok {
		t.Fatalf("sent before command interval")
	}

	// Early phase: orientation adjustment.
	ftype, payload, ok := s.NextTransmission(base.Add(4 * time.Second))
	if !ok || ftype != protocol.FrameCommand {
		t.Fatalf("orientation phase: ok=%v type=%v", ok, ftype)
	}
	cmd, err := command.Decode(payload)
	if err != nil {
		t.Fatalf("decode scheduled command: %v", err)
	}
	if cmd.Kind != command.KindAdjustOrientation {
		t.Fatalf("early phase kind: %v", cmd.Kind)
	}
	if cmd.DPitch < -2 || cmd.DPitch > 2 {
		t.Fatalf("orientation delta out of range: %v", cmd.DPitch)
	}

	// Mid run: one thrust burn.
	_, payload, ok = s.NextTransmission(base.Add(8 * time.Second))
	if !ok {
		t.Fatalf("thrust phase: nothing sent")
	}
	cmd, err = command.Decode(payload)
	if err != nil {
		t.Fatalf("decode burn: %v", err)
	}
	if cmd.Kind != command.KindThrustBurn || cmd.BurnSeconds != cfg.BurnSeconds {
		t.Fatalf("thrust phase command: %+v", cmd)
	}

	// After both phases: silence.
	if _, _, ok := s.NextTransmission(base.Add(16 * time.Second)); ok {
		t.Fatalf("sent after schedule ended")
	}
}
