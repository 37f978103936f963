package crypto

import (
	"errors"

	"github.com/tadglines/go-pkgs/crypto/srp"
)

// SRP parameters fixed by the pair setup protocol.
const (
	// SRPGroup is the 3072-bit RFC 5054 group.
	SRPGroup = "rfc5054.3072"

	// SRPUsername is the fixed SRP identity of the accessory.
	SRPUsername = "Pair-Setup"

	// SaltSize is the length of the SRP salt sent in M2.
	SaltSize = 16

	// PublicKeySize is the length of an SRP public key in the 3072-bit group.
	PublicKeySize = 384

	// ProofSize is the length of an SRP proof (a SHA-512 digest).
	ProofSize = SHA512LenBytes
)

// ErrSRPNotKeyed is returned when a proof is requested before the shared key
// has been computed.
var ErrSRPNotKeyed = errors.New("crypto: srp shared key not computed")

// KeyExchange is the accessory side of a password-authenticated key exchange.
type KeyExchange interface {
	// Salt returns the salt the verifier was computed with.
	Salt() []byte

	// PublicKey returns the accessory's public share.
	PublicKey() []byte

	// ComputeKey derives the shared secret from the controller's public share.
	ComputeKey(peerPublicKey []byte) ([]byte, error)

	// VerifyProof checks the controller's proof against the shared secret.
	VerifyProof(proof []byte) bool

	// Respond returns the accessory's proof for a verified controller proof.
	Respond(proof []byte) ([]byte, error)
}

// newSRP returns the SRP instance shared by both roles.
func newSRP(username string) (*srp.SRP, error) {
	s, err := srp.NewSRP(SRPGroup, NewSHA512, keyDerivationFunc([]byte(username)))
	if err != nil {
		return nil, err
	}
	s.SaltLength = SaltSize
	return s, nil
}

// keyDerivationFunc computes x = H(salt | H(username | ":" | password)) as in RFC 2945.
func keyDerivationFunc(username []byte) srp.KeyDerivationFunc {
	return func(salt, password []byte) []byte {
		h := NewSHA512()
		h.Write(username)
		h.Write([]byte(":"))
		h.Write(password)
		inner := h.Sum(nil)
		h.Reset()
		h.Write(salt)
		h.Write(inner)
		return h.Sum(nil)
	}
}

// SRPServer is a KeyExchange backed by SRP-6a with SHA-512.
type SRPServer struct {
	session *srp.ServerSession
	salt    []byte
	keyed   bool
}

// NewSRPServer starts an exchange for the setup code with a fresh random salt.
func NewSRPServer(setupCode string) (*SRPServer, error) {
	s, err := newSRP(SRPUsername)
	if err != nil {
		return nil, err
	}
	salt, verifier, err := s.ComputeVerifier([]byte(setupCode))
	if err != nil {
		return nil, err
	}
	return &SRPServer{
		session: s.NewServerSession([]byte(SRPUsername), salt, verifier),
		salt:    salt,
	}, nil
}

// Salt implements KeyExchange.
func (s *SRPServer) Salt() []byte {
	return s.salt
}

// PublicKey implements KeyExchange.
func (s *SRPServer) PublicKey() []byte {
	return s.session.GetB()
}

// ComputeKey implements KeyExchange.
func (s *SRPServer) ComputeKey(peerPublicKey []byte) ([]byte, error) {
	key, err := s.session.ComputeKey(peerPublicKey)
	if err != nil {
		s.keyed = false
		return nil, err
	}
	s.keyed = true
	return key, nil
}

// VerifyProof implements KeyExchange.
func (s *SRPServer) VerifyProof(proof []byte) bool {
	if !s.keyed {
		return false
	}
	return s.session.VerifyClientAuthenticator(proof)
}

// Respond implements KeyExchange.
func (s *SRPServer) Respond(proof []byte) ([]byte, error) {
	if !s.keyed {
		return nil, ErrSRPNotKeyed
	}
	return s.session.ComputeAuthenticator(proof), nil
}

// SRPClient is the controller side of the exchange. Accessories never use it;
// it drives pair setup against an accessory in tests and tools.
type SRPClient struct {
	session *srp.ClientSession
	key     []byte
}

// NewSRPClient starts the controller side for the setup code.
func NewSRPClient(setupCode string) (*SRPClient, error) {
	s, err := newSRP(SRPUsername)
	if err != nil {
		return nil, err
	}
	return &SRPClient{
		session: s.NewClientSession([]byte(SRPUsername), []byte(setupCode)),
	}, nil
}

// PublicKey returns the controller's public share.
func (c *SRPClient) PublicKey() []byte {
	return c.session.GetA()
}

// ComputeKey derives the shared secret from the accessory's salt and share.
func (c *SRPClient) ComputeKey(salt, accessoryPublicKey []byte) ([]byte, error) {
	key, err := c.session.ComputeKey(salt, accessoryPublicKey)
	if err != nil {
		return nil, err
	}
	c.key = key
	return key, nil
}

// Proof returns the controller's proof. ComputeKey must be called first.
func (c *SRPClient) Proof() ([]byte, error) {
	if c.key == nil {
		return nil, ErrSRPNotKeyed
	}
	return c.session.ComputeAuthenticator(), nil
}

// VerifyAccessoryProof checks the proof returned in M4.
func (c *SRPClient) VerifyAccessoryProof(proof []byte) bool {
	return c.session.VerifyServerAuthenticator(proof)
}
