// Package storage keeps the accessory's paired controllers and long-term
// identity.
package storage

import (
	"bytes"

	"github.com/backkem/hap/pkg/tlv8"
)

// Storage abstracts persistent storage for accessory state.
// Implementations can use files, databases, or in-memory storage.
//
// All methods must be safe for concurrent use.
type Storage interface {
	// Controller pairings
	LoadPairings() ([]Pairing, error)
	SavePairing(p Pairing) error
	DeletePairing(identifier []byte) error
	ClearPairings() error

	// Accessory identity. LoadIdentity returns ErrNotFound if none is stored.
	LoadIdentity() (*Identity, error)
	SaveIdentity(id *Identity) error

	Close() error
}

// Pairing is a paired controller.
type Pairing struct {
	Identifier []byte          `cbor:"1,keyasint"`
	PublicKey  []byte          `cbor:"2,keyasint"`
	Permission tlv8.Permission `cbor:"3,keyasint"`
}

// Clone returns a deep copy.
func (p Pairing) Clone() Pairing {
	return Pairing{
		Identifier: bytes.Clone(p.Identifier),
		PublicKey:  bytes.Clone(p.PublicKey),
		Permission: p.Permission,
	}
}

// IsAdmin reports whether the controller has admin permission.
func (p Pairing) IsAdmin() bool {
	return p.Permission == tlv8.PermissionAdmin
}
