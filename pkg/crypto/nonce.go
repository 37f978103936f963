package crypto

// NonceSize is the ChaCha20-Poly1305 nonce length.
const NonceSize = 12

// Nonce labels of the encrypted pair setup messages.
const (
	NoncePairSetupM5 = "PS-Msg05"
	NoncePairSetupM6 = "PS-Msg06"
)

// BuildNonce returns the 12-byte nonce for an 8-byte message label:
// four zero bytes followed by the label. Longer labels are truncated.
func BuildNonce(label string) [NonceSize]byte {
	var nonce [NonceSize]byte
	copy(nonce[4:], label)
	return nonce
}
