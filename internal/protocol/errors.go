package protocol

import "errors"

var (
	ErrTruncated      = errors.New("protocol: truncated frame")
	ErrLengthMismatch = errors.New("protocol: declared payload length exceeds frame")
)
