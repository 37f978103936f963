package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

const connectTimeout = 5 * time.Second

var (
	pairingsBucket  = []byte("pairings")
	accessoryBucket = []byte("accessory")
	identityKey     = []byte("identity")
)

// BoltStorage is a Storage that keeps its data in a single bbolt file.
// Records are CBOR encoded.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: connectTimeout})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pairingsBucket, accessoryBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init %s: %w", path, err)
	}

	return &BoltStorage{db: db}, nil
}

// Path returns the database file path.
func (b *BoltStorage) Path() string {
	return b.db.Path()
}

// LoadPairings returns all stored pairings.
func (b *BoltStorage) LoadPairings() ([]Pairing, error) {
	var result []Pairing
	err := b.view(func(tx *bolt.Tx) error {
		return tx.Bucket(pairingsBucket).ForEach(func(k, v []byte) error {
			var p Pairing
			if err := cbor.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode pairing %q: %w", k, err)
			}
			result = append(result, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SavePairing stores or updates a pairing keyed by its identifier.
func (b *BoltStorage) SavePairing(p Pairing) error {
	data, err := cbor.Marshal(p)
	if err != nil {
		return fmt.Errorf("storage: encode pairing: %w", err)
	}
	return b.update(func(tx *bolt.Tx) error {
		return tx.Bucket(pairingsBucket).Put(p.Identifier, data)
	})
}

// DeletePairing removes a pairing by identifier.
func (b *BoltStorage) DeletePairing(identifier []byte) error {
	return b.update(func(tx *bolt.Tx) error {
		return tx.Bucket(pairingsBucket).Delete(identifier)
	})
}

// ClearPairings removes all pairings.
func (b *BoltStorage) ClearPairings() error {
	return b.update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(pairingsBucket); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(pairingsBucket)
		return err
	})
}

// LoadIdentity returns the stored identity, or ErrNotFound.
func (b *BoltStorage) LoadIdentity() (*Identity, error) {
	var rec identityRecord
	err := b.view(func(tx *bolt.Tx) error {
		v := tx.Bucket(accessoryBucket).Get(identityKey)
		if v == nil {
			return ErrNotFound
		}
		if err := cbor.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.identity()
}

// SaveIdentity stores the identity.
func (b *BoltStorage) SaveIdentity(id *Identity) error {
	data, err := cbor.Marshal(id.record())
	if err != nil {
		return fmt.Errorf("storage: encode identity: %w", err)
	}
	return b.update(func(tx *bolt.Tx) error {
		return tx.Bucket(accessoryBucket).Put(identityKey, data)
	})
}

// Close closes the database.
func (b *BoltStorage) Close() error {
	return b.db.Close()
}

func (b *BoltStorage) view(fn func(*bolt.Tx) error) error {
	err := b.db.View(fn)
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

func (b *BoltStorage) update(fn func(*bolt.Tx) error) error {
	err := b.db.Update(fn)
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}
