package discovery

import "errors"

// Package-level sentinel errors for discovery operations.
var (
	// ErrClosed is returned when an operation is attempted on a closed component.
	ErrClosed = errors.New("discovery: closed")

	// ErrAlreadyStarted is returned when starting an already-started service.
	ErrAlreadyStarted = errors.New("discovery: already started")

	// ErrNotStarted is returned when updating or stopping a service that was not started.
	ErrNotStarted = errors.New("discovery: not started")

	// ErrInvalidDeviceID is returned when the device ID is not XX:XX:XX:XX:XX:XX.
	ErrInvalidDeviceID = errors.New("discovery: invalid device ID")

	// ErrInvalidModel is returned when the model name is empty.
	ErrInvalidModel = errors.New("discovery: invalid model name")

	// ErrInvalidConfigNumber is returned when the configuration number is out of range.
	// Valid range: 1-65535.
	ErrInvalidConfigNumber = errors.New("discovery: invalid config number (must be 1-65535)")

	// ErrInvalidCategory is returned when the category is zero.
	ErrInvalidCategory = errors.New("discovery: invalid category")

	// ErrInvalidInstanceName is returned when the instance name is empty.
	ErrInvalidInstanceName = errors.New("discovery: invalid instance name")

	// ErrInvalidTXTRecord is returned when a TXT record has invalid format.
	ErrInvalidTXTRecord = errors.New("discovery: invalid TXT record format")
)
