package storage

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var deviceIDPattern = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

// Identity is the accessory's long-term Ed25519 key and pairing identifier.
type Identity struct {
	deviceID string
	key      ed25519.PrivateKey
}

// identityRecord is the stored form of an Identity.
type identityRecord struct {
	DeviceID string `cbor:"1,keyasint"`
	Seed     []byte `cbor:"2,keyasint"`
}

// NewIdentity generates a new key and a random device ID.
func NewIdentity() (*Identity, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Identity{deviceID: NewDeviceID(), key: key}, nil
}

// IdentityFromSeed rebuilds an identity from a device ID and private key seed.
func IdentityFromSeed(deviceID string, seed []byte) (*Identity, error) {
	if !ValidDeviceID(deviceID) {
		return nil, fmt.Errorf("%w: device ID %q", ErrInvalidIdentity, deviceID)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidIdentity, len(seed))
	}
	return &Identity{deviceID: deviceID, key: ed25519.NewKeyFromSeed(seed)}, nil
}

// NewDeviceID returns a random pairing identifier of the form XX:XX:XX:XX:XX:XX.
func NewDeviceID() string {
	u := uuid.New()
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", u[0], u[1], u[2], u[3], u[4], u[5])
}

// ValidDeviceID reports whether id has the form XX:XX:XX:XX:XX:XX.
func ValidDeviceID(id string) bool {
	return deviceIDPattern.MatchString(id)
}

// DeviceID returns the accessory pairing identifier.
func (i *Identity) DeviceID() string {
	return i.deviceID
}

// PublicKey returns the long-term public key.
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.key.Public().(ed25519.PublicKey)
}

// Sign signs msg with the long-term private key.
func (i *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(i.key, msg)
}

// WithDeviceID returns a copy of the identity using a different device ID.
func (i *Identity) WithDeviceID(deviceID string) (*Identity, error) {
	return IdentityFromSeed(deviceID, i.key.Seed())
}

func (i *Identity) record() identityRecord {
	return identityRecord{DeviceID: i.deviceID, Seed: i.key.Seed()}
}

func (r identityRecord) identity() (*Identity, error) {
	return IdentityFromSeed(r.DeviceID, r.Seed)
}

// LoadOrCreateIdentity returns the stored identity, generating and saving a
// new one if none exists. created reports whether a new one was made.
func LoadOrCreateIdentity(s Storage) (id *Identity, created bool, err error) {
	id, err = s.LoadIdentity()
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	id, err = NewIdentity()
	if err != nil {
		return nil, false, err
	}
	if err := s.SaveIdentity(id); err != nil {
		return nil, false, err
	}
	return id, true, nil
}

// Reset wipes all pairings and replaces the identity with a new one.
// It must not run while a Pairings list is loaded from s.
func Reset(s Storage) (*Identity, error) {
	if err := s.ClearPairings(); err != nil {
		return nil, fmt.Errorf("storage: clear pairings: %w", err)
	}
	id, err := NewIdentity()
	if err != nil {
		return nil, err
	}
	if err := s.SaveIdentity(id); err != nil {
		return nil, fmt.Errorf("storage: save identity: %w", err)
	}
	return id, nil
}
