package pairing

import (
	"github.com/backkem/hap/pkg/crypto"
)

// record is the in-progress pair setup. At most one exists at a time.
type record struct {
	owner    int
	exchange crypto.KeyExchange

	// Set by M3.
	sharedSecret []byte
	sessionKey   [crypto.KeySize]byte
	verified     bool
}

// destroy drops key material held by the record.
func (r *record) destroy() {
	r.exchange = nil
	for i := range r.sharedSecret {
		r.sharedSecret[i] = 0
	}
	r.sharedSecret = nil
	r.sessionKey = [crypto.KeySize]byte{}
	r.verified = false
}

// tryAcquire reports whether owner may start a pairing: no record exists or
// owner already holds it. Caller holds s.mu.
func (s *Setup) tryAcquire(owner int) bool {
	return s.current == nil || s.current.owner == owner
}

// owned returns the record if owner holds it. Caller holds s.mu.
func (s *Setup) owned(owner int) *record {
	if s.current == nil || s.current.owner != owner {
		return nil
	}
	return s.current
}

// release destroys the record if owner holds it. Caller holds s.mu.
func (s *Setup) release(owner int) bool {
	if s.owned(owner) == nil {
		return false
	}
	s.current.destroy()
	s.current = nil
	return true
}

// TryAcquire reports whether owner could start a pair setup now.
func (s *Setup) TryAcquire(owner int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tryAcquire(owner)
}

// Cancel destroys the in-progress pairing if owner holds it.
// It returns true if a pairing was cancelled.
func (s *Setup) Cancel(owner int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.release(owner) {
		return false
	}
	if s.log != nil {
		s.log.Debugf("pair setup owned by slot %d cancelled", owner)
	}
	return true
}

// Owner returns the slot owning the in-progress pairing, or NoOwner.
func (s *Setup) Owner() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return NoOwner, false
	}
	return s.current.owner, true
}

// InProgress reports whether a pair setup is in progress.
func (s *Setup) InProgress() bool {
	_, ok := s.Owner()
	return ok
}

// Attempts returns the number of pair setup attempts started so far.
func (s *Setup) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}
