package tlv8

// Builder appends TLV8 items to a caller-owned buffer.
//
// Adds are all-or-nothing. When an item does not fit the builder is marked
// full and every later add fails with ErrBufferFull, so a response can never
// contain items written after one that was dropped.
type Builder struct {
	buf  []byte
	n    int
	full bool
}

// NewBuilder returns a Builder that writes into buf.
func NewBuilder(buf []byte) *Builder {
	return &Builder{buf: buf}
}

// Reset discards everything written and clears the full state.
func (b *Builder) Reset() {
	b.n = 0
	b.full = false
}

// ResetBuffer discards everything written and switches to buf.
func (b *Builder) ResetBuffer(buf []byte) {
	b.buf = buf
	b.Reset()
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return b.n
}

// Bytes returns the encoded items.
func (b *Builder) Bytes() []byte {
	return b.buf[:b.n]
}

// Full reports whether an add has failed for lack of space.
func (b *Builder) Full() bool {
	return b.full
}

// reserve checks that size bytes are available, marking the builder full if not.
func (b *Builder) reserve(size int) bool {
	if b.full || len(b.buf)-b.n < size {
		b.full = true
		return false
	}
	return true
}

// put writes one item; the caller has reserved the space.
func (b *Builder) put(t Type, v []byte) {
	b.buf[b.n] = byte(t)
	b.buf[b.n+1] = byte(len(v))
	copy(b.buf[b.n+headerLen:], v)
	b.n += headerLen + len(v)
}

// Add appends a single item. v must be at most MaxValueLen bytes.
func (b *Builder) Add(t Type, v []byte) error {
	if len(v) > MaxValueLen {
		return ErrValueTooLong
	}
	if !b.reserve(headerLen + len(v)) {
		return ErrBufferFull
	}
	b.put(t, v)
	return nil
}

// AddInt appends v little-endian in the fewest bytes that hold it, at least one.
func (b *Builder) AddInt(t Type, v uint64) error {
	var tmp [8]byte
	n := 0
	for {
		tmp[n] = byte(v)
		n++
		v >>= 8
		if v == 0 {
			break
		}
	}
	return b.Add(t, tmp[:n])
}

// AddFragmented appends v split into MaxValueLen-sized items of type t.
// The whole value is checked against the remaining space before anything is
// written.
func (b *Builder) AddFragmented(t Type, v []byte) error {
	if !b.reserve(fragmentedLen(len(v))) {
		return ErrBufferFull
	}
	if len(v) == 0 {
		b.put(t, nil)
		return nil
	}
	for len(v) > 0 {
		n := len(v)
		if n > MaxValueLen {
			n = MaxValueLen
		}
		b.put(t, v[:n])
		v = v[n:]
	}
	return nil
}
