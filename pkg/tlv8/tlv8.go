// Package tlv8 implements the TLV8 encoding used by HomeKit pairing messages.
//
// Each item is a one-byte type, a one-byte length and up to 255 bytes of
// value. Values longer than 255 bytes are split across consecutive items of
// the same type and reassembled by concatenation.
//
//	+------+--------+-----------------+
//	| type | length | value (0..255)  |
//	+------+--------+-----------------+
//
// Parsing never fails: a truncated trailing item is clipped to the end of the
// buffer and ends the scan. Building never writes a partial item: an add
// either appends the whole item or leaves the buffer untouched.
package tlv8

// MaxValueLen is the largest value a single item can carry.
const MaxValueLen = 255

// headerLen is the size of the type and length bytes.
const headerLen = 2

// fragmentedLen returns the encoded size of a value of n bytes split into
// MaxValueLen chunks. An empty value still takes one zero-length item.
func fragmentedLen(n int) int {
	if n == 0 {
		return headerLen
	}
	chunks := (n + MaxValueLen - 1) / MaxValueLen
	return n + chunks*headerLen
}
