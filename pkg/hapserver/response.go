package hapserver

import (
	"strconv"
)

// contentLengthReserve is the space kept between the headers and the body
// region returned by Data, enough for the Content-Length header and the
// blank line that ends the header block.
const contentLengthReserve = len("Content-Length: ") + 10 + len("\r\n\r\n")

// Response builds an HTTP/1.1 response into a fixed buffer.
//
// Headers are written with Start and Add. The body is either passed to End,
// or constructed in place in Data and committed with SetContentLength.
// Overflowing the buffer is sticky and reported by Err.
type Response struct {
	buf  []byte
	n    int
	code int
	done bool
	err  error
}

// NewResponse returns a Response that writes into buf.
func NewResponse(buf []byte) *Response {
	return &Response{buf: buf}
}

// Start discards any previous content and writes the status line.
func (r *Response) Start(code int) {
	r.n = 0
	r.code = code
	r.done = false
	r.err = nil
	r.write("HTTP/1.1 ", strconv.Itoa(code), " ", StatusText(code), "\r\n")
}

// Add writes a header.
func (r *Response) Add(name, value string) {
	r.write(name, ": ", value, "\r\n")
}

// End writes the Content-Length header, the blank line and body.
func (r *Response) End(body []byte) {
	r.endHeaders(len(body))
	if r.err != nil {
		return
	}
	if len(r.buf)-r.n < len(body) {
		r.err = ErrResponseTooLarge
		return
	}
	r.n += copy(r.buf[r.n:], body)
	r.done = true
}

// Data returns the free space where a body may be built in place.
func (r *Response) Data() []byte {
	start := r.n + contentLengthReserve
	if r.err != nil || r.done || start > len(r.buf) {
		return nil
	}
	return r.buf[start:]
}

// SetContentLength commits the first n bytes of Data as the body.
func (r *Response) SetContentLength(n int) {
	data := r.Data()
	if n < 0 || n > len(data) {
		r.err = ErrResponseTooLarge
		return
	}
	start := r.n + contentLengthReserve
	r.endHeaders(n)
	if r.err != nil {
		return
	}
	r.n += copy(r.buf[r.n:], r.buf[start:start+n])
	r.done = true
}

// Status returns the status code passed to Start.
func (r *Response) Status() int {
	return r.code
}

// Bytes returns the response written so far.
func (r *Response) Bytes() []byte {
	return r.buf[:r.n]
}

// Err returns ErrResponseTooLarge if anything did not fit.
func (r *Response) Err() error {
	return r.err
}

func (r *Response) endHeaders(length int) {
	r.write("Content-Length: ", strconv.Itoa(length), "\r\n\r\n")
}

func (r *Response) write(parts ...string) {
	if r.err != nil {
		return
	}
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	if len(r.buf)-r.n < size {
		r.err = ErrResponseTooLarge
		return
	}
	for _, p := range parts {
		r.n += copy(r.buf[r.n:], p)
	}
}
