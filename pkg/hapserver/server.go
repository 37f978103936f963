// Package hapserver frames HAP HTTP requests on a connection slot and routes
// them to the pairing handlers.
//
// Each connection is served by one goroutine that reads a request, writes the
// response built in the slot's buffers, and repeats until the peer closes the
// connection or sends something that cannot be framed.
package hapserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/pion/logging"

	"github.com/backkem/hap/pkg/session"
	"github.com/backkem/hap/pkg/tlv8"
)

// rejectBufferSize sizes the response written when no slot is free.
const rejectBufferSize = 256

// PairSetup handles one pair setup request for a slot.
type PairSetup interface {
	Handle(owner int, in *tlv8.Set, out *tlv8.Builder) tlv8.State
}

// Pairings reports how many controllers are paired.
type Pairings interface {
	Count() int
}

// ServerConfig configures a Server.
type ServerConfig struct {
	// Setup handles /pair-setup. Required.
	Setup PairSetup

	// Table provides the connection slots. Required.
	Table *session.Table

	// Pairings decides whether /identify is allowed. If nil the accessory is
	// treated as unpaired.
	Pairings Pairings

	// OnIdentify is called for an accepted /identify request.
	OnIdentify func()

	// LoggerFactory for logging.
	LoggerFactory logging.LoggerFactory
}

// Server serves HAP requests on accepted connections.
type Server struct {
	setup      PairSetup
	table      *session.Table
	pairings   Pairings
	onIdentify func()

	log logging.LeveledLogger
}

// NewServer creates a Server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Setup == nil {
		return nil, ErrNoSetup
	}
	if config.Table == nil {
		return nil, ErrNoTable
	}

	s := &Server{
		setup:      config.Setup,
		table:      config.Table,
		pairings:   config.Pairings,
		onIdentify: config.OnIdentify,
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("hapserver")
	}
	return s, nil
}

// ServeConn serves requests on conn until the peer closes it or a request
// cannot be framed. The caller closes conn.
//
// When no slot is free a 503 response is written and session.ErrTableFull
// is returned.
func (s *Server) ServeConn(conn net.Conn) error {
	slot, err := s.table.Open()
	if err != nil {
		s.reject(conn)
		return err
	}
	defer s.table.Close(slot.ID())

	br := bufio.NewReader(conn)
	for {
		req, err := http.ReadRequest(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrFraming, err)
		}

		resp := NewResponse(slot.ResponseBuffer())
		body, err := readBody(req, slot.RequestBuffer())
		if errors.Is(err, ErrBodyTooLarge) {
			if s.status(resp, http.StatusRequestEntityTooLarge, HAPStatusOutOfResources) {
				s.send(conn, resp)
			}
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFraming, err)
		}

		s.route(slot, req, body, resp)
		if resp.Err() != nil {
			if s.log != nil {
				s.log.Warnf("slot %d: %s %s: %v", slot.ID(), req.Method, req.URL.Path, resp.Err())
			}
			if err := WriteStatus(resp, http.StatusInternalServerError, HAPStatusOutOfResources); err != nil {
				return err
			}
		}
		if s.log != nil {
			s.log.Debugf("slot %d: %s %s -> %d", slot.ID(), req.Method, req.URL.Path, resp.Status())
		}
		if _, err := conn.Write(resp.Bytes()); err != nil {
			return err
		}
		if req.Close {
			return nil
		}
	}
}

// readBody reads the request body into buf.
func readBody(req *http.Request, buf []byte) ([]byte, error) {
	// The body is left unread on rejection; the connection is closed
	// right after, so it is never drained.
	if len(req.TransferEncoding) > 0 {
		return nil, errors.New("transfer encoding not supported")
	}
	if req.ContentLength > int64(len(buf)) {
		return nil, ErrBodyTooLarge
	}
	defer req.Body.Close()

	n := int(req.ContentLength)
	if n <= 0 {
		return buf[:0], nil
	}
	if _, err := io.ReadFull(req.Body, buf[:n]); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// reject answers a connection that could not get a slot.
func (s *Server) reject(conn net.Conn) {
	if s.log != nil {
		s.log.Warnf("rejecting %s: too many connections", conn.RemoteAddr())
	}
	resp := NewResponse(make([]byte, rejectBufferSize))
	if s.status(resp, http.StatusServiceUnavailable, HAPStatusOutOfResources) {
		s.send(conn, resp)
	}
}

// status writes a HAP JSON status response and reports whether it fits.
func (s *Server) status(resp *Response, code, hapStatus int) bool {
	if err := WriteStatus(resp, code, hapStatus); err != nil {
		if s.log != nil {
			s.log.Warnf("status %d response: %v", code, err)
		}
		return false
	}
	return true
}

// send writes a response on a connection that is about to be closed.
func (s *Server) send(conn net.Conn, resp *Response) {
	if _, err := conn.Write(resp.Bytes()); err != nil && s.log != nil {
		s.log.Warnf("write %d response to %s: %v", resp.Status(), conn.RemoteAddr(), err)
	}
}
