package protocol

import (
	"encoding/binary"

	"github.com/danmuck/satlink/internal/crc"
)

// Frame is one complete wire message. Frames are sealed by NewFrame and
// treated as immutable afterwards.
type Frame struct {
	Version    uint16
	Type       FrameType
	Seq        uint32
	PayloadLen uint32
	Payload    []byte
	CRC        uint16
}

// NewFrame builds a frame for payload and seals its CRC trailer.
func NewFrame(t FrameType, seq uint32, payload []byte) Frame {
	f := Frame{
		Version:    Version,
		Type:       t,
		Seq:        seq,
		PayloadLen: uint32(len(payload)),
		Payload:    payload,
	}
	f.CRC = crc.Checksum16(f.checksumInput())
	return f
}

// Valid reports whether recomputing the checksum over header+payload
// reproduces the trailer.
func (f Frame) Valid() bool {
	return crc.Checksum16(f.checksumInput()) == f.CRC
}

// Encode serializes the frame to its wire representation.
func (f Frame) Encode() []byte {
	buf := make([]byte, 0, HeaderSize+len(f.Payload)+TrailerSize)
	buf = append(buf, f.checksumInput()...)
	buf = binary.BigEndian.AppendUint16(buf, f.CRC)
	return buf
}

// Decode parses one frame from b. It fails with ErrTruncated when fewer than
// MinFrameSize bytes are present and ErrLengthMismatch when the declared
// payload length does not fit the remaining bytes.
func Decode(b []byte) (Frame, error) {
	if len(b) < MinFrameSize {
		return Frame{}, ErrTruncated
	}

	f := Frame{
		Version:    binary.BigEndian.Uint16(b[0:2]),
		Type:       FrameType(b[2]),
		Seq:        binary.BigEndian.Uint32(b[3:7]),
		PayloadLen: binary.BigEndian.Uint32(b[7:11]),
	}

	if uint64(len(b)) < HeaderSize+uint64(f.PayloadLen)+TrailerSize {
		return Frame{}, ErrLengthMismatch
	}

	if f.PayloadLen > 0 {
		f.Payload = make([]byte, f.PayloadLen)
		copy(f.Payload, b[HeaderSize:HeaderSize+f.PayloadLen])
	}
	f.CRC = binary.BigEndian.Uint16(b[HeaderSize+f.PayloadLen:])
	return f, nil
}

// checksumInput renders the CRC coverage: header fields then payload, in
// wire order.
func (f Frame) checksumInput() []byte {
	buf := make([]byte, 0, HeaderSize+len(f.Payload))
	buf = binary.BigEndian.AppendUint16(buf, f.Version)
	buf = append(buf, byte(f.Type))
	buf = binary.BigEndian.AppendUint32(buf, f.Seq)
	buf = binary.BigEndian.AppendUint32(buf, f.PayloadLen)
	buf = append(buf, f.Payload...)
	return buf
}
