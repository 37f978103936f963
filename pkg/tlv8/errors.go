package tlv8

import "errors"

var (
	// ErrBufferFull is returned when an item does not fit in the remaining
	// builder capacity. Once returned, every later add fails the same way.
	ErrBufferFull = errors.New("tlv8: buffer full")

	// ErrValueTooLong is returned when a single item value exceeds 255 bytes.
	ErrValueTooLong = errors.New("tlv8: value longer than 255 bytes")
)
