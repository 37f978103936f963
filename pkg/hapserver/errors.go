package hapserver

import "errors"

// Server errors.
var (
	// ErrFraming is returned when a request cannot be framed. The connection
	// must be closed.
	ErrFraming = errors.New("hapserver: malformed request")

	// ErrBodyTooLarge is returned when a request body does not fit the slot's
	// request buffer.
	ErrBodyTooLarge = errors.New("hapserver: request body too large")

	// ErrResponseTooLarge is returned when a response does not fit the slot's
	// response buffer.
	ErrResponseTooLarge = errors.New("hapserver: response too large")

	// ErrNoSetup is returned when ServerConfig.Setup is nil.
	ErrNoSetup = errors.New("hapserver: pair setup handler is required")

	// ErrNoTable is returned when ServerConfig.Table is nil.
	ErrNoTable = errors.New("hapserver: slot table is required")
)
