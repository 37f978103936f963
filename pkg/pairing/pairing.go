// Package pairing implements the accessory side of HomeKit pair setup.
//
// Pair setup is a three round-trip exchange driven by the controller:
//
//	Controller                               Accessory
//	----------                               ---------
//	M1 {State, Method}            ------>    start SRP, create pairing record
//	                              <------    M2 {State, PublicKey, Salt}
//	M3 {State, PublicKey, Proof}  ------>    compute key, verify proof
//	                              <------    M4 {State, Proof}
//	M5 {State, EncryptedData}     ------>    decrypt, verify, store pairing
//	                              <------    M6 {State[, EncryptedData]}
//
// Only one pair setup may be in progress at a time. The in-progress exchange
// is held in a single pairing record owned by the connection slot that sent
// M1; requests from other slots are refused with Busy until the record is
// released by an error, by completion, or by the owning slot closing.
//
// Every request gets a TLV8 response carrying the next State and either the
// success items or exactly one Error item, never both.
package pairing

import (
	"crypto/ed25519"

	"github.com/backkem/hap/pkg/crypto"
	"github.com/backkem/hap/pkg/tlv8"
)

// MaxAttempts is the number of pair setup attempts after which M1 is refused
// with MaxTries. The counter is never reset while the process runs.
const MaxAttempts = 100

// NoOwner is the owner value reported when no pairing is in progress.
const NoOwner = -1

// maxInnerItems bounds the items parsed from the decrypted M5 payload.
const maxInnerItems = 8

// Store is the list of controllers paired with the accessory.
// Implementations must be safe for concurrent use.
type Store interface {
	// Count returns the number of stored pairings.
	Count() int

	// Add stores a pairing. It returns false when the list is full.
	Add(identifier, publicKey []byte, permission tlv8.Permission) bool
}

// Identity is the accessory's long-term Ed25519 identity.
type Identity interface {
	// DeviceID returns the accessory pairing identifier (XX:XX:XX:XX:XX:XX).
	DeviceID() string

	// PublicKey returns the long-term public key.
	PublicKey() ed25519.PublicKey

	// Sign signs msg with the long-term private key.
	Sign(msg []byte) []byte
}

// ExchangeFactory starts a new key exchange for a setup code.
type ExchangeFactory func(setupCode string) (crypto.KeyExchange, error)

// NewSRPExchange is the default ExchangeFactory.
func NewSRPExchange(setupCode string) (crypto.KeyExchange, error) {
	return crypto.NewSRPServer(setupCode)
}
