package hapserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/backkem/hap/pkg/pairing"
	"github.com/backkem/hap/pkg/session"
	"github.com/backkem/hap/pkg/tlv8"
)

// fakeSetup answers every request with State=M2 and records the owner.
type fakeSetup struct {
	mu     sync.Mutex
	owners []int
}

func (f *fakeSetup) Handle(owner int, in *tlv8.Set, out *tlv8.Builder) tlv8.State {
	f.mu.Lock()
	f.owners = append(f.owners, owner)
	f.mu.Unlock()
	out.AddInt(tlv8.TypeState, uint64(tlv8.StateM2))
	out.Add(tlv8.TypeSalt, []byte{1, 2, 3, 4})
	return tlv8.StateM2
}

type countPairings int

func (c countPairings) Count() int { return int(c) }

// client is the controller end of a served pipe.
type client struct {
	conn net.Conn
	br   *bufio.Reader
	done chan error
}

func serve(t *testing.T, srv *Server) *client {
	t.Helper()
	c, s := net.Pipe()
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeConn(s)
		s.Close()
	}()
	t.Cleanup(func() { c.Close() })
	return &client{conn: c, br: bufio.NewReader(c), done: done}
}

func (c *client) do(t *testing.T, method, path string, header map[string]string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req := fmt.Sprintf("%s %s HTTP/1.1\r\nHost: accessory\r\n", method, path)
	for k, v := range header {
		req += k + ": " + v + "\r\n"
	}
	req += "\r\n"
	if _, err := c.conn.Write(append([]byte(req), body...)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return c.read(t)
}

func (c *client) read(t *testing.T) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.ReadResponse(c.br, nil)
	if err != nil {
		t.Fatalf("ReadResponse() error = %v", err)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return resp, b
}

func tlvHeader(n int) map[string]string {
	return map[string]string{
		"Content-Type":   ContentTypePairingTLV8,
		"Content-Length": fmt.Sprint(n),
	}
}

func newTestServer(t *testing.T, config ServerConfig) *Server {
	t.Helper()
	if config.Table == nil {
		config.Table = session.NewTable(session.Config{MaxSlots: 2})
	}
	if config.Setup == nil {
		config.Setup = &fakeSetup{}
	}
	srv, err := NewServer(config)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv
}

func TestNewServer(t *testing.T) {
	if _, err := NewServer(ServerConfig{Table: session.NewTable(session.Config{})}); !errors.Is(err, ErrNoSetup) {
		t.Errorf("NewServer() error = %v, want %v", err, ErrNoSetup)
	}
	if _, err := NewServer(ServerConfig{Setup: &fakeSetup{}}); !errors.Is(err, ErrNoTable) {
		t.Errorf("NewServer() error = %v, want %v", err, ErrNoTable)
	}
}

func TestServer_PairSetup(t *testing.T) {
	setup := &fakeSetup{}
	srv := newTestServer(t, ServerConfig{Setup: setup})
	c := serve(t, srv)

	body := []byte{0x06, 0x01, 0x01, 0x00, 0x01, 0x00}
	resp, got := c.do(t, "POST", "/pair-setup", tlvHeader(len(body)), body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != ContentTypePairingTLV8 {
		t.Errorf("Content-Type = %q, want %q", ct, ContentTypePairingTLV8)
	}
	want := []byte{0x06, 0x01, 0x02, 0x02, 0x04, 1, 2, 3, 4}
	if string(got) != string(want) {
		t.Errorf("body = %x, want %x", got, want)
	}
	if len(setup.owners) != 1 || setup.owners[0] != 0 {
		t.Errorf("owners = %v, want [0]", setup.owners)
	}
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		header map[string]string
		code   int
		status string
	}{
		{"wrong content type", "POST", "/pair-setup", map[string]string{"Content-Type": "text/plain", "Content-Length": "0"}, 400, `{"status":-70410}`},
		{"missing content length", "POST", "/pair-setup", map[string]string{"Content-Type": ContentTypePairingTLV8}, 400, `{"status":-70410}`},
		{"pair setup GET", "GET", "/pair-setup", nil, 405, `{"status":-70410}`},
		{"pair verify", "POST", "/pair-verify", tlvHeader(0), 470, `{"status":-70411}`},
		{"pairings", "POST", "/pairings", tlvHeader(0), 470, `{"status":-70411}`},
		{"accessories", "GET", "/accessories", nil, 470, `{"status":-70411}`},
		{"characteristics", "PUT", "/characteristics", map[string]string{"Content-Length": "0"}, 470, `{"status":-70411}`},
		{"unknown path", "GET", "/resource", nil, 404, `{"status":-70409}`},
	}

	srv := newTestServer(t, ServerConfig{})
	c := serve(t, srv)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.do(t, tt.method, tt.path, tt.header, nil)
			if resp.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.code)
			}
			if string(body) != tt.status {
				t.Errorf("body = %s, want %s", body, tt.status)
			}
		})
	}
}

func TestServer_Identify(t *testing.T) {
	t.Run("unpaired", func(t *testing.T) {
		identified := 0
		srv := newTestServer(t, ServerConfig{
			Pairings:   countPairings(0),
			OnIdentify: func() { identified++ },
		})
		c := serve(t, srv)

		resp, _ := c.do(t, "POST", "/identify", map[string]string{"Content-Length": "0"}, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("StatusCode = %d, want 204", resp.StatusCode)
		}
		if identified != 1 {
			t.Errorf("identify called %d times, want 1", identified)
		}
	})

	t.Run("paired", func(t *testing.T) {
		identified := 0
		srv := newTestServer(t, ServerConfig{
			Pairings:   countPairings(1),
			OnIdentify: func() { identified++ },
		})
		c := serve(t, srv)

		resp, body := c.do(t, "POST", "/identify", map[string]string{"Content-Length": "0"}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("StatusCode = %d, want 400", resp.StatusCode)
		}
		if string(body) != `{"status":-70401}` {
			t.Errorf("body = %s, want %s", body, `{"status":-70401}`)
		}
		if identified != 0 {
			t.Errorf("identify called %d times, want 0", identified)
		}
	})
}

func TestServer_TooManyConnections(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1})
	srv := newTestServer(t, ServerConfig{Table: table})

	first := serve(t, srv)
	first.do(t, "GET", "/accessories", nil, nil)

	second := serve(t, srv)
	resp, body := second.read(t)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", resp.StatusCode)
	}
	if string(body) != `{"status":-70407}` {
		t.Errorf("body = %s, want %s", body, `{"status":-70407}`)
	}
	if err := <-second.done; !errors.Is(err, session.ErrTableFull) {
		t.Errorf("ServeConn() error = %v, want %v", err, session.ErrTableFull)
	}
	if table.Count() != 1 {
		t.Errorf("Count() = %d, want 1", table.Count())
	}
}

func TestServer_FramingError(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1})
	srv := newTestServer(t, ServerConfig{Table: table})
	c := serve(t, srv)

	if _, err := c.conn.Write([]byte("NOT A REQUEST\r\n\r\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := <-c.done; !errors.Is(err, ErrFraming) {
		t.Errorf("ServeConn() error = %v, want %v", err, ErrFraming)
	}
	if table.Count() != 0 {
		t.Errorf("Count() = %d, want 0", table.Count())
	}
}

func TestServer_BodyTooLarge(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1, RequestBufferSize: 16})
	srv := newTestServer(t, ServerConfig{Table: table})
	c := serve(t, srv)

	// The body is never sent: the 413 must come back after the headers alone.
	c.conn.Write([]byte("POST /pair-setup HTTP/1.1\r\nHost: a\r\nContent-Type: application/pairing+tlv8\r\nContent-Length: 1000000\r\n\r\n"))
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, _ := c.read(t)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("StatusCode = %d, want 413", resp.StatusCode)
	}
	if err := <-c.done; !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("ServeConn() error = %v, want %v", err, ErrBodyTooLarge)
	}
}

func TestServer_StatusDoesNotFit(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1, ResponseBufferSize: 32})
	srv := newTestServer(t, ServerConfig{Table: table})

	if srv.status(NewResponse(make([]byte, 32)), http.StatusNotFound, HAPStatusResourceDoesNotExist) {
		t.Error("status() = true for a 32-byte buffer, want false")
	}

	c := serve(t, srv)
	c.conn.Write([]byte("GET /unknown HTTP/1.1\r\nHost: a\r\n\r\n"))
	if err := <-c.done; !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("ServeConn() error = %v, want %v", err, ErrResponseTooLarge)
	}
	if table.Count() != 0 {
		t.Errorf("Count() = %d, want 0", table.Count())
	}
}

func TestServer_RejectClosedPeer(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1})
	srv := newTestServer(t, ServerConfig{Table: table})
	serve(t, srv)

	c, s := net.Pipe()
	c.Close()
	if err := srv.ServeConn(s); !errors.Is(err, session.ErrTableFull) {
		t.Errorf("ServeConn() error = %v, want %v", err, session.ErrTableFull)
	}
}

func TestServer_PeerCloseReleasesSlot(t *testing.T) {
	table := session.NewTable(session.Config{MaxSlots: 1})
	srv := newTestServer(t, ServerConfig{Table: table})
	c := serve(t, srv)

	c.do(t, "GET", "/accessories", nil, nil)
	c.conn.Close()

	if err := <-c.done; err != nil {
		t.Errorf("ServeConn() error = %v, want nil", err)
	}
	if table.Count() != 0 {
		t.Errorf("Count() = %d, want 0", table.Count())
	}
}

// TestServer_CloseCancelsPairing checks that a pairing owned by a closed
// connection no longer blocks other controllers.
func TestServer_CloseCancelsPairing(t *testing.T) {
	store := &memPairings{}
	setup, err := pairing.NewSetup(pairing.SetupConfig{SetupCode: "031-45-154", Store: store})
	if err != nil {
		t.Fatalf("NewSetup() error = %v", err)
	}
	table := session.NewTable(session.Config{MaxSlots: 2, Canceler: setup})
	srv := newTestServer(t, ServerConfig{Setup: setup, Table: table, Pairings: store})

	m1 := []byte{0x06, 0x01, 0x01, 0x00, 0x01, 0x00}

	a := serve(t, srv)
	_, body := a.do(t, "POST", "/pair-setup", tlvHeader(len(m1)), m1)
	if tlv8.Parse(body, 0).Has(tlv8.TypeError) {
		t.Fatalf("first M1 failed: %x", body)
	}

	b := serve(t, srv)
	_, body = b.do(t, "POST", "/pair-setup", tlvHeader(len(m1)), m1)
	if code, _ := tlv8.Parse(body, 0).Int(tlv8.TypeError); tlv8.ErrorCode(code) != tlv8.ErrorBusy {
		t.Fatalf("second M1 Error = %s, want %s", tlv8.ErrorCode(code), tlv8.ErrorBusy)
	}

	a.conn.Close()
	<-a.done
	if setup.InProgress() {
		t.Fatal("pairing still in progress after owner closed")
	}

	_, body = b.do(t, "POST", "/pair-setup", tlvHeader(len(m1)), m1)
	in := tlv8.Parse(body, 0)
	if in.Has(tlv8.TypeError) {
		t.Errorf("M1 after close failed: %x", body)
	}
	if !in.Has(tlv8.TypePublicKey) || !in.Has(tlv8.TypeSalt) {
		t.Error("M2 missing PublicKey or Salt")
	}
	if owner, _ := setup.Owner(); owner != 1 {
		t.Errorf("Owner() = %d, want 1", owner)
	}
}

type memPairings struct {
	mu sync.Mutex
	n  int
}

func (m *memPairings) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

func (m *memPairings) Add(id, ltpk []byte, perm tlv8.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return true
}
