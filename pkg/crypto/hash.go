// Package crypto provides the cryptographic primitives used by HomeKit pair
// setup: SRP-6a over the 3072-bit RFC 5054 group, HKDF-SHA-512,
// ChaCha20-Poly1305 and Ed25519.
package crypto

import (
	"crypto/sha512"
	"hash"
)

// SHA512LenBytes is the SHA-512 output length in bytes.
const SHA512LenBytes = 64

// NewSHA512 returns a new hash.Hash computing SHA-512 digests.
func NewSHA512() hash.Hash {
	return sha512.New()
}
