// Package protocol defines the satlink wire frame and its codec.
//
// A frame is a fixed big-endian header, an opaque payload, and a CRC-16
// trailer:
//
//	[version:2][type:1][seq:4][payload_len:4][payload:N][crc:2]
//
// The trailer is computed over header+payload in that exact order. Decoding
// never validates the trailer; callers check Frame.Valid separately so that
// a corrupted frame can still be inspected (its sequence number is needed to
// negative-acknowledge it).
package protocol
