package storage

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidIdentity is returned when a stored identity cannot be decoded.
	ErrInvalidIdentity = errors.New("storage: invalid identity")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("storage: closed")
)
