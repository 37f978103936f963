// Package session manages the fixed pool of connection slots.
package session

import (
	"sync"

	"github.com/pion/logging"
)

// Table defaults.
const (
	// DefaultMaxSlots is the default number of concurrent connections.
	DefaultMaxSlots = 8

	// DefaultRequestBufferSize bounds a request body.
	DefaultRequestBufferSize = 2048

	// DefaultResponseBufferSize bounds a full response, headers included.
	DefaultResponseBufferSize = 2048
)

// Database is notified when slots open and close.
type Database interface {
	SessionOpened(id int)
	SessionClosed(id int)
}

// Canceler cancels work owned by a slot when it closes.
type Canceler interface {
	Cancel(owner int) bool
}

// Config configures a Table.
type Config struct {
	// MaxSlots limits concurrent connections (0 uses DefaultMaxSlots).
	MaxSlots int

	// RequestBufferSize and ResponseBufferSize size each slot's buffers.
	RequestBufferSize  int
	ResponseBufferSize int

	// Database is notified of slot open and close. Optional.
	Database Database

	// Canceler is called with the slot ID on close. Optional.
	Canceler Canceler

	// LoggerFactory for logging.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) applyDefaults() {
	if c.MaxSlots <= 0 {
		c.MaxSlots = DefaultMaxSlots
	}
	if c.RequestBufferSize <= 0 {
		c.RequestBufferSize = DefaultRequestBufferSize
	}
	if c.ResponseBufferSize <= 0 {
		c.ResponseBufferSize = DefaultResponseBufferSize
	}
}

// Table is a fixed pool of connection slots.
//
// Slots are opened lowest ID first. A closed slot's ID may be reused by the
// next Open; anything the slot owned is cancelled before that can happen.
type Table struct {
	mu    sync.Mutex
	slots []*Slot

	db       Database
	canceler Canceler

	log logging.LeveledLogger
}

// NewTable creates a table and allocates every slot's buffers.
func NewTable(config Config) *Table {
	config.applyDefaults()

	t := &Table{
		slots:    make([]*Slot, config.MaxSlots),
		db:       config.Database,
		canceler: config.Canceler,
	}
	for i := range t.slots {
		t.slots[i] = newSlot(i, config.RequestBufferSize, config.ResponseBufferSize)
	}
	if config.LoggerFactory != nil {
		t.log = config.LoggerFactory.NewLogger("session")
	}
	return t
}

// Open claims the first closed slot. It returns ErrTableFull when all
// slots are open; the caller must reject the connection.
func (t *Table) Open() (*Slot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.slots {
		if s.open {
			continue
		}
		s.reset()
		s.open = true
		if t.db != nil {
			t.db.SessionOpened(s.id)
		}
		if t.log != nil {
			t.log.Debugf("slot %d opened", s.id)
		}
		return s, nil
	}
	if t.log != nil {
		t.log.Warnf("no free slot (%d open)", len(t.slots))
	}
	return nil, ErrTableFull
}

// Close closes the slot. It returns false if id is out of range or the slot
// is already closed. A pairing owned by the slot is cancelled.
func (t *Table) Close(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id >= len(t.slots) || !t.slots[id].open {
		return false
	}
	if t.db != nil {
		t.db.SessionClosed(id)
	}
	t.slots[id].open = false
	if t.canceler != nil && t.canceler.Cancel(id) {
		if t.log != nil {
			t.log.Infof("slot %d closed with pairing in progress", id)
		}
	}
	if t.log != nil {
		t.log.Debugf("slot %d closed", id)
	}
	return true
}

// CloseAll closes every open slot and returns how many were closed.
func (t *Table) CloseAll() int {
	count := 0
	for id := 0; id < t.MaxSlots(); id++ {
		if t.Close(id) {
			count++
		}
	}
	return count
}

// Get returns the open slot with the given ID, or ErrInvalidSlot.
func (t *Table) Get(id int) (*Slot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id >= len(t.slots) || !t.slots[id].open {
		return nil, ErrInvalidSlot
	}
	return t.slots[id], nil
}

// Count returns the number of open slots.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, s := range t.slots {
		if s.open {
			n++
		}
	}
	return n
}

// IsFull returns true if no slot is free.
func (t *Table) IsFull() bool {
	return t.Count() == len(t.slots)
}

// MaxSlots returns the number of slots.
func (t *Table) MaxSlots() int {
	return len(t.slots)
}
