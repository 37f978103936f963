package pairing

import (
	"bytes"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/backkem/hap/pkg/crypto"
	"github.com/backkem/hap/pkg/tlv8"
)

// memStore is a Store for tests.
type memStore struct {
	mu       sync.Mutex
	max      int
	pairings map[string][]byte
}

func newMemStore(max int) *memStore {
	return &memStore{max: max, pairings: make(map[string][]byte)}
}

func (m *memStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pairings)
}

func (m *memStore) Add(id, ltpk []byte, _ tlv8.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pairings) >= m.max {
		return false
	}
	m.pairings[string(id)] = append([]byte(nil), ltpk...)
	return true
}

// fakeExchange is a KeyExchange with fixed values.
type fakeExchange struct {
	secret []byte
	proof  []byte
}

var goodProof = bytes.Repeat([]byte{0x5A}, crypto.ProofSize)

func newFakeExchange(string) (crypto.KeyExchange, error) {
	return &fakeExchange{
		secret: bytes.Repeat([]byte{0x11}, 64),
		proof:  goodProof,
	}, nil
}

func (f *fakeExchange) Salt() []byte      { return bytes.Repeat([]byte{0x01}, crypto.SaltSize) }
func (f *fakeExchange) PublicKey() []byte { return bytes.Repeat([]byte{0x02}, crypto.PublicKeySize) }

func (f *fakeExchange) ComputeKey(peer []byte) ([]byte, error) {
	return f.secret, nil
}

func (f *fakeExchange) VerifyProof(proof []byte) bool {
	return bytes.Equal(proof, f.proof)
}

func (f *fakeExchange) Respond(proof []byte) ([]byte, error) {
	return bytes.Repeat([]byte{0xA5}, crypto.ProofSize), nil
}

// testIdentity is an Identity backed by a generated key.
type testIdentity struct {
	id   string
	priv ed25519.PrivateKey
}

func newTestIdentity(t *testing.T) *testIdentity {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return &testIdentity{id: "1A:2B:3C:4D:5E:6F", priv: priv}
}

func (i *testIdentity) DeviceID() string             { return i.id }
func (i *testIdentity) PublicKey() ed25519.PublicKey { return i.priv.Public().(ed25519.PublicKey) }
func (i *testIdentity) Sign(msg []byte) []byte       { return ed25519.Sign(i.priv, msg) }

type item struct {
	typ   tlv8.Type
	value []byte
}

func intItem(t tlv8.Type, v uint64) item {
	return item{t, []byte{byte(v)}}
}

// request encodes items into a parsed request.
func request(t *testing.T, items ...item) *tlv8.Set {
	t.Helper()
	b := tlv8.NewBuilder(make([]byte, 2048))
	for _, it := range items {
		if err := b.AddFragmented(it.typ, it.value); err != nil {
			t.Fatalf("AddFragmented(%s) error = %v", it.typ, err)
		}
	}
	return tlv8.Parse(b.Bytes(), tlv8.DefaultMaxItems)
}

// exchange runs one request through s and returns the parsed response.
func exchange(t *testing.T, s *Setup, owner int, in *tlv8.Set) *tlv8.Set {
	t.Helper()
	out := tlv8.NewBuilder(make([]byte, 1024))
	s.Handle(owner, in, out)
	return tlv8.Parse(out.Bytes(), tlv8.DefaultMaxItems)
}

func m1(t *testing.T) *tlv8.Set {
	return request(t,
		intItem(tlv8.TypeState, uint64(tlv8.StateM1)),
		intItem(tlv8.TypeMethod, uint64(tlv8.MethodPairSetup)),
	)
}

// expectError checks that resp is exactly State and Error.
func expectError(t *testing.T, resp *tlv8.Set, state tlv8.State, code tlv8.ErrorCode) {
	t.Helper()
	if got, _ := resp.Int(tlv8.TypeState); tlv8.State(got) != state {
		t.Errorf("State = %s, want %s", tlv8.State(got), state)
	}
	got, ok := resp.Int(tlv8.TypeError)
	if !ok {
		t.Fatalf("response has no Error, want %s", code)
	}
	if tlv8.ErrorCode(got) != code {
		t.Errorf("Error = %s, want %s", tlv8.ErrorCode(got), code)
	}
	if resp.Len() != 2 {
		t.Errorf("response has %d items, want 2", resp.Len())
	}
}

func expectState(t *testing.T, resp *tlv8.Set, state tlv8.State) {
	t.Helper()
	if code, ok := resp.Int(tlv8.TypeError); ok {
		t.Fatalf("unexpected Error = %s", tlv8.ErrorCode(code))
	}
	if got, _ := resp.Int(tlv8.TypeState); tlv8.State(got) != state {
		t.Errorf("State = %s, want %s", tlv8.State(got), state)
	}
}
