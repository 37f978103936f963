package accessory

import "errors"

// Package-level errors.
var (
	// ErrNotInitialized is returned when an operation requires an initialized accessory.
	ErrNotInitialized = errors.New("accessory: not initialized")

	// ErrAlreadyStarted is returned when Start() is called on a running accessory.
	ErrAlreadyStarted = errors.New("accessory: already started")

	// ErrNotStarted is returned when an operation requires a running accessory.
	ErrNotStarted = errors.New("accessory: not started")

	// ErrAlreadyStopped is returned when Stop() is called on a stopped accessory.
	ErrAlreadyStopped = errors.New("accessory: already stopped")

	// ErrInvalidName is returned when Name is empty or too long.
	ErrInvalidName = errors.New("accessory: name must be 1-64 characters")

	// ErrInvalidModel is returned when Model is empty.
	ErrInvalidModel = errors.New("accessory: model is required")

	// ErrInvalidSetupCode is returned when SetupCode is malformed or trivial.
	ErrInvalidSetupCode = errors.New("accessory: invalid setup code")

	// ErrInvalidDeviceID is returned when DeviceID is not XX:XX:XX:XX:XX:XX.
	ErrInvalidDeviceID = errors.New("accessory: invalid device ID")

	// ErrInvalidConfigNumber is returned when ConfigNumber is outside 1-65535.
	ErrInvalidConfigNumber = errors.New("accessory: config number must be 1-65535")

	// ErrInvalidPort is returned when Port is outside 0-65535.
	ErrInvalidPort = errors.New("accessory: invalid port")
)

// InvalidSetupCodes lists setup codes that must not be used.
var InvalidSetupCodes = map[string]bool{
	"000-00-000": true,
	"111-11-111": true,
	"222-22-222": true,
	"333-33-333": true,
	"444-44-444": true,
	"555-55-555": true,
	"666-66-666": true,
	"777-77-777": true,
	"888-88-888": true,
	"999-99-999": true,
	"123-45-678": true,
	"876-54-321": true,
}
