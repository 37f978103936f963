package crypto

import (
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the ChaCha20-Poly1305 key length.
const KeySize = chacha20poly1305.KeySize

// TagSize is the Poly1305 authentication tag length.
const TagSize = chacha20poly1305.Overhead

var (
	// ErrAuthentication is returned when an authentication tag does not match.
	ErrAuthentication = errors.New("crypto: message authentication failed")

	// ErrShortMessage is returned when a sealed message is shorter than its tag.
	ErrShortMessage = errors.New("crypto: sealed message shorter than tag")
)

// Open decrypts sealed, which is ciphertext followed by its 16-byte tag,
// under key and the nonce for label.
func Open(key [KeySize]byte, label string, sealed []byte) ([]byte, error) {
	if len(sealed) < TagSize {
		return nil, ErrShortMessage
	}
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	nonce := BuildNonce(label)
	plain, err := aead.Open(nil, nonce[:], sealed, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plain, nil
}

// Seal encrypts plaintext under key and the nonce for label, returning the
// ciphertext with the tag appended.
func Seal(key [KeySize]byte, label string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	nonce := BuildNonce(label)
	return aead.Seal(nil, nonce[:], plaintext, nil), nil
}
