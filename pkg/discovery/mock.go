package discovery

import (
	"net"
	"slices"
	"sync"
)

// MockServer is an MDNSServer that records calls, for tests.
type MockServer struct {
	mu       sync.Mutex
	Instance string
	Service  string
	Port     int
	text     []string
	shutdown bool
}

// SetText implements MDNSServer.
func (m *MockServer) SetText(text []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = slices.Clone(text)
}

// Shutdown implements MDNSServer.
func (m *MockServer) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = true
}

// Text returns the current TXT records.
func (m *MockServer) Text() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.text)
}

// IsShutdown reports whether Shutdown was called.
func (m *MockServer) IsShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

// MockServerFactory is an MDNSServerFactory that creates MockServers
// without network I/O.
type MockServerFactory struct {
	mu      sync.Mutex
	servers []*MockServer

	// Err, when set, is returned by Register.
	Err error
}

// NewMockServerFactory creates a new mock factory.
func NewMockServerFactory() *MockServerFactory {
	return &MockServerFactory{}
}

// Register implements MDNSServerFactory.
func (f *MockServerFactory) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	server := &MockServer{
		Instance: instance,
		Service:  service,
		Port:     port,
		text:     slices.Clone(txt),
	}
	f.servers = append(f.servers, server)
	return server, nil
}

// Last returns the most recently registered server, or nil.
func (f *MockServerFactory) Last() *MockServer {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.servers) == 0 {
		return nil
	}
	return f.servers[len(f.servers)-1]
}

// Count returns the number of registrations.
func (f *MockServerFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.servers)
}
