package storage

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/pion/logging"

	"github.com/backkem/hap/pkg/tlv8"
)

// DefaultMaxPairings is the default pairing list capacity.
const DefaultMaxPairings = 16

// ErrNoStorage is returned when PairingsConfig.Storage is nil.
var ErrNoStorage = errors.New("storage: storage is required")

// PairingsConfig configures a Pairings list.
type PairingsConfig struct {
	// Storage persists the list. Required.
	Storage Storage

	// MaxPairings bounds the list (0 uses DefaultMaxPairings).
	MaxPairings int

	// OnChange is called with the new count after the list changes.
	OnChange func(count int)

	// LoggerFactory for logging.
	LoggerFactory logging.LoggerFactory
}

// Pairings is the bounded list of paired controllers. Every change is
// written through to the Storage before it becomes visible.
//
// All methods are safe for concurrent use.
type Pairings struct {
	mu       sync.RWMutex
	storage  Storage
	max      int
	list     []Pairing
	onChange func(count int)

	log logging.LeveledLogger
}

// NewPairings loads the stored pairings.
func NewPairings(config PairingsConfig) (*Pairings, error) {
	if config.Storage == nil {
		return nil, ErrNoStorage
	}
	if config.MaxPairings <= 0 {
		config.MaxPairings = DefaultMaxPairings
	}

	list, err := config.Storage.LoadPairings()
	if err != nil {
		return nil, fmt.Errorf("storage: load pairings: %w", err)
	}
	slices.SortFunc(list, func(a, b Pairing) int {
		return bytes.Compare(a.Identifier, b.Identifier)
	})

	p := &Pairings{
		storage:  config.Storage,
		max:      config.MaxPairings,
		list:     list,
		onChange: config.OnChange,
	}
	if config.LoggerFactory != nil {
		p.log = config.LoggerFactory.NewLogger("storage")
	}
	return p, nil
}

// Count returns the number of pairings.
func (p *Pairings) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.list)
}

// Max returns the list capacity.
func (p *Pairings) Max() int {
	return p.max
}

// Add stores a pairing, replacing the key and permission of an existing
// pairing with the same identifier. It returns false if the list is full or
// the pairing could not be persisted.
func (p *Pairings) Add(identifier, publicKey []byte, permission tlv8.Permission) bool {
	pairing := Pairing{
		Identifier: bytes.Clone(identifier),
		PublicKey:  bytes.Clone(publicKey),
		Permission: permission,
	}

	p.mu.Lock()
	i := p.index(identifier)
	if i < 0 && len(p.list) >= p.max {
		p.mu.Unlock()
		if p.log != nil {
			p.log.Warnf("pairing list full (%d)", p.max)
		}
		return false
	}
	if err := p.storage.SavePairing(pairing); err != nil {
		p.mu.Unlock()
		if p.log != nil {
			p.log.Errorf("failed to save pairing %s: %v", identifier, err)
		}
		return false
	}
	if i >= 0 {
		p.list[i] = pairing
	} else {
		p.list = append(p.list, pairing)
	}
	count := len(p.list)
	p.mu.Unlock()

	if p.log != nil {
		p.log.Infof("stored pairing %s (%s)", identifier, permission)
	}
	p.changed(count)
	return true
}

// Get returns the pairing with the given identifier.
func (p *Pairings) Get(identifier []byte) (Pairing, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i := p.index(identifier); i >= 0 {
		return p.list[i].Clone(), true
	}
	return Pairing{}, false
}

// List returns a copy of all pairings.
func (p *Pairings) List() []Pairing {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]Pairing, len(p.list))
	for i, pairing := range p.list {
		result[i] = pairing.Clone()
	}
	return result
}

// Remove deletes the pairing with the given identifier.
// It returns false if no such pairing exists.
func (p *Pairings) Remove(identifier []byte) (bool, error) {
	p.mu.Lock()
	i := p.index(identifier)
	if i < 0 {
		p.mu.Unlock()
		return false, nil
	}
	if err := p.storage.DeletePairing(identifier); err != nil {
		p.mu.Unlock()
		return false, err
	}
	p.list = slices.Delete(p.list, i, i+1)
	count := len(p.list)
	p.mu.Unlock()

	p.changed(count)
	return true, nil
}

// Clear removes every pairing.
func (p *Pairings) Clear() error {
	p.mu.Lock()
	if err := p.storage.ClearPairings(); err != nil {
		p.mu.Unlock()
		return err
	}
	p.list = nil
	p.mu.Unlock()

	p.changed(0)
	return nil
}

// index returns the position of identifier or -1. Caller holds p.mu.
func (p *Pairings) index(identifier []byte) int {
	return slices.IndexFunc(p.list, func(pairing Pairing) bool {
		return bytes.Equal(pairing.Identifier, identifier)
	})
}

func (p *Pairings) changed(count int) {
	if p.onChange != nil {
		p.onChange(count)
	}
}
