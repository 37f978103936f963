package tlv8

import "encoding/binary"

// DefaultMaxItems is the item limit used when Parse is given a non-positive limit.
const DefaultMaxItems = 16

// item locates one parsed item inside the backing buffer.
type item struct {
	typ   Type
	start int // first value byte
	end   int // one past the last value byte
}

// Set is the result of parsing a TLV8 buffer: an ordered list of items that
// refer into the parsed buffer. The buffer is borrowed, not copied, and must
// not change while the Set is in use.
type Set struct {
	buf   []byte
	items []item
}

// Parse scans buf and returns the items found, stopping after maxItems items.
func Parse(buf []byte, maxItems int) *Set {
	s := &Set{}
	s.Parse(buf, maxItems)
	return s
}

// Parse rescans the Set over buf, reusing its item storage.
// It returns the number of items found.
//
// Scanning stops when fewer than two bytes remain, when maxItems items have
// been found, or after an item whose declared length runs past the end of
// buf; that last item is clipped to the bytes actually present.
func (s *Set) Parse(buf []byte, maxItems int) int {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if cap(s.items) < maxItems {
		s.items = make([]item, 0, maxItems)
	}
	s.buf = buf
	s.items = s.items[:0]

	off := 0
	for len(s.items) < maxItems {
		if len(buf)-off < headerLen {
			break
		}
		start := off + headerLen
		end := start + int(buf[off+1])
		clipped := false
		if end > len(buf) {
			end = len(buf)
			clipped = true
		}
		s.items = append(s.items, item{typ: Type(buf[off]), start: start, end: end})
		if clipped {
			break
		}
		off = end
	}
	return len(s.items)
}

// Len returns the number of parsed items.
func (s *Set) Len() int {
	return len(s.items)
}

// Type returns the type of item i. ok is false if i is out of range.
func (s *Set) Type(i int) (t Type, ok bool) {
	if i < 0 || i >= len(s.items) {
		return 0, false
	}
	return s.items[i].typ, true
}

// Value returns the value of item i as a slice of the parsed buffer.
// Returns nil if i is out of range.
func (s *Set) Value(i int) []byte {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	it := s.items[i]
	return s.buf[it.start:it.end:it.end]
}

// Index returns the index of the first item of type t, or -1.
func (s *Set) Index(t Type) int {
	for i, it := range s.items {
		if it.typ == t {
			return i
		}
	}
	return -1
}

// Has reports whether an item of type t is present.
func (s *Set) Has(t Type) bool {
	return s.Index(t) >= 0
}

// Int returns the first item of type t decoded as a little-endian unsigned
// integer of its stored length. Values longer than eight bytes are decoded
// from their first eight bytes.
func (s *Set) Int(t Type) (uint64, bool) {
	i := s.Index(t)
	if i < 0 {
		return 0, false
	}
	v := s.Value(i)
	if len(v) > 8 {
		v = v[:8]
	}
	var b [8]byte
	copy(b[:], v)
	return binary.LittleEndian.Uint64(b[:]), true
}

// Bytes copies the value of the first item of type t into dst.
// It fails if no such item exists or the value does not fit in dst.
func (s *Set) Bytes(t Type, dst []byte) (int, bool) {
	i := s.Index(t)
	if i < 0 {
		return 0, false
	}
	v := s.Value(i)
	if len(v) > len(dst) {
		return 0, false
	}
	return copy(dst, v), true
}

// Multi reassembles the value that starts at item i and continues through
// every consecutive item of the same type, copying it into dst.
// It fails if i is out of range or if a fragment does not fit in the space
// left in dst; dst is never partially reported as a result.
func (s *Set) Multi(i int, dst []byte) (int, bool) {
	t, ok := s.Type(i)
	if !ok {
		return 0, false
	}
	n := 0
	for ; i < len(s.items) && s.items[i].typ == t; i++ {
		v := s.Value(i)
		if len(v) > len(dst)-n {
			return 0, false
		}
		n += copy(dst[n:], v)
	}
	return n, true
}

// Lookup returns the reassembled value of the first item of type t in a newly
// allocated slice.
func (s *Set) Lookup(t Type) ([]byte, bool) {
	i := s.Index(t)
	if i < 0 {
		return nil, false
	}
	size := 0
	for j := i; j < len(s.items) && s.items[j].typ == t; j++ {
		size += s.items[j].end - s.items[j].start
	}
	out := make([]byte, size)
	n, ok := s.Multi(i, out)
	if !ok {
		return nil, false
	}
	return out[:n], true
}
