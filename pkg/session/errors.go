package session

import "errors"

// Session package errors.
var (
	// ErrTableFull is returned by Open when every slot is in use.
	ErrTableFull = errors.New("session: too many connections")

	// ErrInvalidSlot is returned when a slot ID is out of range or closed.
	ErrInvalidSlot = errors.New("session: invalid slot")
)
