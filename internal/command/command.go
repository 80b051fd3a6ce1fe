// Package command defines the ground-to-satellite command set and its text
// codec: TYPE|param1|param2|… .
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedCommand = errors.New("command: malformed command")
	ErrUnknownCommand   = errors.New("command: unknown command type")
)

// Kind enumerates the supported commands.
type Kind uint8

const (
	KindAdjustOrientation Kind = iota
	KindThrustBurn
	KindEnterSafeMode
	KindReboot
)

func (k Kind) String() string {
	switch k {
	case KindAdjustOrientation:
		return "AdjustOrientation"
	case KindThrustBurn:
		return "ThrustBurn"
	case KindEnterSafeMode:
		return "EnterSafeMode"
	case KindReboot:
		return "Reboot"
	default:
		return "Unknown"
	}
}

// Command is one instruction with kind-specific parameters.
type Command struct {
	Kind Kind

	// Orientation deltas in degrees, AdjustOrientation only.
	DPitch float64
	DYaw   float64
	DRoll  float64

	// Burn duration in seconds, ThrustBurn only.
	BurnSeconds float64
}

// Encode renders the wire payload.
func (c Command) Encode() []byte {
	switch c.Kind {
	case KindAdjustOrientation:
		return []byte(fmt.Sprintf("ADJUST_ORIENTATION|%g|%g|%g", c.DPitch, c.DYaw, c.DRoll))
	case KindThrustBurn:
		return []byte(fmt.Sprintf("THRUST_BURN|%g", c.BurnSeconds))
	case KindEnterSafeMode:
		return []byte("ENTER_SAFE_MODE")
	case KindReboot:
		return []byte("REBOOT")
	default:
		return nil
	}
}

// Decode parses a wire payload.
func Decode(payload []byte) (Command, error) {
	parts := strings.Split(string(payload), "|")
	switch parts[0] {
	case "ADJUST_ORIENTATION":
		if len(parts) != 4 {
			return Command{}, fmt.Errorf("%w: adjust_orientation wants 3 params, got %d", ErrMalformedCommand, len(parts)-1)
		}
		cmd := Command{Kind: KindAdjustOrientation}
		for i, out := range []*float64{&cmd.DPitch, &cmd.DYaw, &cmd.DRoll} {
			f, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				return Command{}, fmt.Errorf("%w: param %q", ErrMalformedCommand, parts[i+1])
			}
			*out = f
		}
		return cmd, nil
	case "THRUST_BURN":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("%w: thrust_burn wants 1 param, got %d", ErrMalformedCommand, len(parts)-1)
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: param %q", ErrMalformedCommand, parts[1])
		}
		return Command{Kind: KindThrustBurn, BurnSeconds: secs}, nil
	case "ENTER_SAFE_MODE":
		return Command{Kind: KindEnterSafeMode}, nil
	case "REBOOT":
		return Command{Kind: KindReboot}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}
}
