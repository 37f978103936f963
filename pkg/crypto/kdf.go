package crypto

import (
	"crypto/sha512"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Salt and info strings for the keys derived from the SRP shared secret.
const (
	PairSetupEncryptSalt = "Pair-Setup-Encrypt-Salt"
	PairSetupEncryptInfo = "Pair-Setup-Encrypt-Info"

	PairSetupControllerSignSalt = "Pair-Setup-Controller-Sign-Salt"
	PairSetupControllerSignInfo = "Pair-Setup-Controller-Sign-Info"

	PairSetupAccessorySignSalt = "Pair-Setup-Accessory-Sign-Salt"
	PairSetupAccessorySignInfo = "Pair-Setup-Accessory-Sign-Info"
)

// HKDFSHA512 derives length bytes of key material using HKDF-SHA-512 (RFC 5869).
func HKDFSHA512(inputKey, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(sha512.New, inputKey, salt, info)
	result := make([]byte, length)
	if _, err := io.ReadFull(reader, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeriveKey derives a 32-byte key from secret with string salt and info.
func DeriveKey(secret []byte, salt, info string) ([KeySize]byte, error) {
	var key [KeySize]byte
	out, err := HKDFSHA512(secret, []byte(salt), []byte(info), KeySize)
	if err != nil {
		return key, err
	}
	copy(key[:], out)
	return key, nil
}
