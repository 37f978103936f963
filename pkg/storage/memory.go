package storage

import (
	"sync"
)

// MemoryStorage is an in-memory Storage implementation.
// Useful for testing and development. Data is lost when the process exits.
//
// All methods are safe for concurrent use.
type MemoryStorage struct {
	mu sync.RWMutex

	pairings map[string]Pairing
	identity *Identity
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		pairings: make(map[string]Pairing),
	}
}

// LoadPairings returns all stored pairings.
func (m *MemoryStorage) LoadPairings() ([]Pairing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Pairing, 0, len(m.pairings))
	for _, p := range m.pairings {
		result = append(result, p.Clone())
	}
	return result, nil
}

// SavePairing stores or updates a pairing.
func (m *MemoryStorage) SavePairing(p Pairing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pairings[string(p.Identifier)] = p.Clone()
	return nil
}

// DeletePairing removes a pairing by identifier.
func (m *MemoryStorage) DeletePairing(identifier []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pairings, string(identifier))
	return nil
}

// ClearPairings removes all pairings.
func (m *MemoryStorage) ClearPairings() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pairings = make(map[string]Pairing)
	return nil
}

// LoadIdentity returns the stored identity.
func (m *MemoryStorage) LoadIdentity() (*Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return nil, ErrNotFound
	}
	return m.identity, nil
}

// SaveIdentity stores the identity.
func (m *MemoryStorage) SaveIdentity(id *Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = id
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
