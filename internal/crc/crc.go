// Package crc implements the CRC-16/CCITT-FALSE checksum used as the frame
// integrity trailer: polynomial 0x1021, initial register 0xFFFF, MSB-first,
// no input/output reflection, no final XOR.
package crc

const polynomial = 0x1021

// Checksum16 computes the CRC-16/CCITT-FALSE value over data. It is total
// over any byte sequence; Checksum16(nil) returns the initial register 0xFFFF.
func Checksum16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
