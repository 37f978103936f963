package pairing

import "errors"

var (
	// ErrStoreRequired is returned when SetupConfig.Store is nil.
	ErrStoreRequired = errors.New("pairing: pairing store is required")

	// ErrSetupCodeRequired is returned when SetupConfig.SetupCode is empty.
	ErrSetupCodeRequired = errors.New("pairing: setup code is required")
)
