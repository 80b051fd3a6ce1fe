// Package telemetry defines the satellite sensor reading and its payload
// codec. Readings travel as a pipe-delimited key=value string, which keeps
// corrupted payloads cheap to reject and human-readable in logs.
package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMalformedReading = errors.New("telemetry: malformed reading")

// Reading is one telemetry sample: thermal, power, orbit, and attitude.
type Reading struct {
	TS           time.Time
	TemperatureC float64
	BatteryPct   float64
	AltitudeKm   float64
	PitchDeg     float64
	YawDeg       float64
	RollDeg      float64
}

// Encode renders the wire payload:
// ts=<unix-nanos>|temp=…|batt=…|alt=…|pitch=…|yaw=…|roll=… with two-decimal
// floats.
func (r Reading) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "ts=%d", r.TS.UnixNano())
	fmt.Fprintf(&b, "|temp=%.2f", r.TemperatureC)
	fmt.Fprintf(&b, "|batt=%.2f", r.BatteryPct)
	fmt.Fprintf(&b, "|alt=%.2f", r.AltitudeKm)
	fmt.Fprintf(&b, "|pitch=%.2f", r.PitchDeg)
	fmt.Fprintf(&b, "|yaw=%.2f", r.YawDeg)
	fmt.Fprintf(&b, "|roll=%.2f", r.RollDeg)
	return []byte(b.String())
}

// Decode parses a wire payload. Unknown keys are ignored; a token without
// '=', an unparsable value, or a missing timestamp fails with
// ErrMalformedReading.
func Decode(payload []byte) (Reading, error) {
	var r Reading
	sawTS := false

	for _, token := range strings.Split(string(payload), "|") {
		key, val, found := strings.Cut(token, "=")
		if !found {
			return Reading{}, fmt.Errorf("%w: token %q", ErrMalformedReading, token)
		}
		switch key {
		case "ts":
			nanos, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return Reading{}, fmt.Errorf("%w: ts %q", ErrMalformedReading, val)
			}
			r.TS = time.Unix(0, nanos)
			sawTS = true
		case "temp":
			if err := parseField(val, &r.TemperatureC); err != nil {
				return Reading{}, err
			}
		case "batt":
			if err := parseField(val, &r.BatteryPct); err != nil {
				return Reading{}, err
			}
		case "alt":
			if err := parseField(val, &r.AltitudeKm); err != nil {
				return Reading{}, err
			}
		case "pitch":
			if err := parseField(val, &r.PitchDeg); err != nil {
				return Reading{}, err
			}
		case "yaw":
			if err := parseField(val, &r.YawDeg); err != nil {
				return Reading{}, err
			}
		case "roll":
			if err := parseField(val, &r.RollDeg); err != nil {
				return Reading{}, err
			}
		}
	}

	if !sawTS {
		return Reading{}, fmt.Errorf("%w: missing ts", ErrMalformedReading)
	}
	return r, nil
}

func parseField(val string, out *float64) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%w: value %q", ErrMalformedReading, val)
	}
	*out = f
	return nil
}

// CSVHeader is the first line of the ground-station telemetry log.
func CSVHeader() string {
	return "timestamp_ns,temperature_c,battery_pct,orbit_altitude_km,pitch_deg,yaw_deg,roll_deg"
}

// CSVRow renders the reading as one log line under CSVHeader.
func (r Reading) CSVRow() string {
	return fmt.Sprintf("%d,%.2f,%.2f,%.2f,%.2f,%.2f,%.2f",
		r.TS.UnixNano(),
		r.TemperatureC,
		r.BatteryPct,
		r.AltitudeKm,
		r.PitchDeg,
		r.YawDeg,
		r.RollDeg,
	)
}
