package protocol

// Version is the only wire protocol version this module speaks.
const Version uint16 = 1

const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 2 + 1 + 4 + 4
	// TrailerSize is the CRC trailer length in bytes.
	TrailerSize = 2
	// MinFrameSize is the smallest well-formed frame (empty payload).
	MinFrameSize = HeaderSize + TrailerSize
)

// FrameType identifies the frame role on the wire.
type FrameType uint8

const (
	FrameTelemetry FrameType = 1
	FrameCommand   FrameType = 2
	FrameAck       FrameType = 3
	FrameNak       FrameType = 4
)

// Payload-bearing frame types are subject to sequencing and duplicate
// suppression; Ack/Nak frames are control traffic and are never retried.
func (t FrameType) Carries() bool {
	return t == FrameTelemetry || t == FrameCommand
}

func (t FrameType) String() string {
	switch t {
	case FrameTelemetry:
		return "telemetry"
	case FrameCommand:
		return "command"
	case FrameAck:
		return "ack"
	case FrameNak:
		return "nak"
	default:
		return "unknown"
	}
}
