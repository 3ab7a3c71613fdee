package eventing

// Metrics provides observability data for event monitoring.
// All counter fields use atomic operations for thread safety.
type Metrics struct {
	// Dispatch Counters (atomic operations required)
	RaisesTotal       int64 // Completed raise calls that passed validation
	ListenersInvoked  int64 // Individual listener invocations across all raises
	SignatureFailures int64 // Raises rejected by signature validation

	// Registration Metrics
	RegisteredListeners int64 // Currently registered listeners (requires mutex read)

	// Declaration Metrics
	ConflictWarnings int64 // Conflicting declarations resolved first-seen-wins

	// LastRaise is the unix-nano timestamp of the most recent raise,
	// zero if the event has never been raised.
	LastRaise int64
}
