package accessory

// State represents the lifecycle state of an Accessory.
type State int

const (
	// StateInitialized means the accessory is created but not started.
	StateInitialized State = iota

	// StateStarting means Start() has been called and startup is in progress.
	StateStarting

	// StateUnpaired means the accessory is running and advertises sf=1.
	StateUnpaired

	// StatePaired means at least one controller is paired.
	StatePaired

	// StateStopping means Stop() has been called and shutdown is in progress.
	StateStopping

	// StateStopped means the accessory has been shut down.
	StateStopped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateStarting:
		return "Starting"
	case StateUnpaired:
		return "Unpaired"
	case StatePaired:
		return "Paired"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// IsRunning returns true if the accessory is serving connections.
func (s State) IsRunning() bool {
	return s == StateUnpaired || s == StatePaired
}

// CanStart returns true if Start() can be called in this state.
func (s State) CanStart() bool {
	return s == StateInitialized
}

// CanStop returns true if Stop() can be called in this state.
func (s State) CanStop() bool {
	return s.IsRunning() || s == StateStarting
}
