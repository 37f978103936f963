package crypto

import (
	"crypto/ed25519"
)

// SignedInfo concatenates the HKDF-derived prefix, the pairing identifier and
// the long-term public key: the message signed by both sides of pair setup.
func SignedInfo(derived, identifier, publicKey []byte) []byte {
	info := make([]byte, 0, len(derived)+len(identifier)+len(publicKey))
	info = append(info, derived...)
	info = append(info, identifier...)
	return append(info, publicKey...)
}

// VerifySignature reports whether sig is a valid Ed25519 signature of msg by
// publicKey. Keys of the wrong length never verify.
func VerifySignature(publicKey, msg, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), msg, sig)
}
