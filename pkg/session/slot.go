package session

import "github.com/backkem/hap/pkg/tlv8"

// Slot holds the per-connection buffers of one open connection.
//
// A slot is used by a single goroutine at a time: the one serving its
// connection. Buffers are reused for every request on the connection.
type Slot struct {
	id   int
	open bool

	request  []byte
	response []byte

	in  tlv8.Set
	out tlv8.Builder
}

func newSlot(id, requestSize, responseSize int) *Slot {
	return &Slot{
		id:       id,
		request:  make([]byte, requestSize),
		response: make([]byte, responseSize),
	}
}

// ID returns the slot index in [0, MaxSlots).
func (s *Slot) ID() int {
	return s.id
}

// RequestBuffer returns the buffer a request body is read into.
func (s *Slot) RequestBuffer() []byte {
	return s.request
}

// ResponseBuffer returns the buffer a response is built in.
func (s *Slot) ResponseBuffer() []byte {
	return s.response
}

// ParseInput parses body into the slot's input TLV workspace.
func (s *Slot) ParseInput(body []byte, maxItems int) *tlv8.Set {
	s.in.Parse(body, maxItems)
	return &s.in
}

// Output resets the slot's output TLV workspace to write into buf.
func (s *Slot) Output(buf []byte) *tlv8.Builder {
	s.out.ResetBuffer(buf)
	return &s.out
}

// reset clears the buffers for a new connection.
func (s *Slot) reset() {
	clear(s.request)
	clear(s.response)
	s.in.Parse(nil, 0)
	s.out.ResetBuffer(nil)
}
