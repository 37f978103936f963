// Package transport accepts HAP TCP connections and hands each one to a
// connection handler on its own goroutine.
package transport

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/pion/logging"
)

// ConnHandler serves one connection until it returns. The transport closes
// the connection afterwards.
type ConnHandler interface {
	ServeConn(conn net.Conn) error
}

// ConnHandlerFunc adapts a function to ConnHandler.
type ConnHandlerFunc func(conn net.Conn) error

// ServeConn calls f(conn).
func (f ConnHandlerFunc) ServeConn(conn net.Conn) error {
	return f(conn)
}

// TCP accepts connections on a listener and serves each with the handler.
type TCP struct {
	listener net.Listener
	handler  ConnHandler
	closeCh  chan struct{}
	wg       sync.WaitGroup
	log      logging.LeveledLogger

	// Connection tracking
	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

// TCPConfig configures the TCP transport.
type TCPConfig struct {
	// Listener is an optional pre-existing Listener to use.
	// If nil, a new listener will be created using ListenAddr.
	Listener net.Listener

	// ListenAddr is the address to listen on (e.g., ":7889"). Empty picks
	// an ephemeral port.
	// Ignored if Listener is provided.
	ListenAddr string

	// Handler serves each accepted connection. Required.
	Handler ConnHandler

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// NewTCP creates a new TCP transport with the given configuration.
func NewTCP(config TCPConfig) (*TCP, error) {
	if config.Handler == nil {
		return nil, ErrNoHandler
	}

	t := &TCP{
		listener: config.Listener,
		handler:  config.Handler,
		closeCh:  make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}

	if config.LoggerFactory != nil {
		t.log = config.LoggerFactory.NewLogger("transport")
	}

	if t.listener == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = ":0"
		}

		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		t.listener = listener
	}

	return t, nil
}

// Start begins accepting connections.
func (t *TCP) Start() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.started {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.mu.Unlock()

	if t.log != nil {
		t.log.Infof("listening on %s", t.listener.Addr())
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return nil
}

// Stop closes the listener and every connection, and waits for their
// handlers to return.
func (t *TCP) Stop() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.closed = true
	t.mu.Unlock()

	if t.log != nil {
		t.log.Info("stopping TCP transport")
	}

	close(t.closeCh)
	t.listener.Close()

	t.connsMu.Lock()
	for conn := range t.conns {
		conn.Close()
	}
	t.connsMu.Unlock()

	t.wg.Wait()
	return nil
}

// Addr returns the address the transport is listening on.
func (t *TCP) Addr() net.Addr {
	return t.listener.Addr()
}

// Port returns the TCP port the transport is listening on.
func (t *TCP) Port() int {
	if addr, ok := t.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// ConnCount returns the number of connections being served.
func (t *TCP) ConnCount() int {
	t.connsMu.Lock()
	defer t.connsMu.Unlock()
	return len(t.conns)
}

// AddConnection serves an existing connection as if it had been accepted.
// This is useful for testing with net.Pipe().
func (t *TCP) AddConnection(conn net.Conn) {
	if !t.track(conn) {
		conn.Close()
		return
	}
	go t.handleConn(conn)
}

// acceptLoop accepts incoming connections.
func (t *TCP) acceptLoop() {
	defer t.wg.Done()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.closeCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		if !t.track(conn) {
			conn.Close()
			return
		}
		go t.handleConn(conn)
	}
}

// track registers conn and its handler goroutine unless the transport is
// stopping. Stop closes every tracked connection.
func (t *TCP) track(conn net.Conn) bool {
	t.connsMu.Lock()
	defer t.connsMu.Unlock()

	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return false
	}

	t.conns[conn] = struct{}{}
	t.wg.Add(1)
	return true
}

// handleConn serves a single connection and closes it.
func (t *TCP) handleConn(conn net.Conn) {
	defer t.wg.Done()

	remote := conn.RemoteAddr()
	if t.log != nil {
		t.log.Debugf("connection from %s", remote)
	}

	defer func() {
		conn.Close()
		t.connsMu.Lock()
		delete(t.conns, conn)
		t.connsMu.Unlock()
	}()

	err := t.handler.ServeConn(conn)
	if t.log == nil {
		return
	}
	select {
	case <-t.closeCh:
		return
	default:
	}
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		t.log.Debugf("connection from %s closed", remote)
	default:
		t.log.Debugf("connection from %s closed: %v", remote, err)
	}
}
