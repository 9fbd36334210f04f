package quota

import "errors"

var (
	// ErrEmptyIdentity identity value passed to the key builder is empty
	ErrEmptyIdentity = errors.New("scope identity is empty")

	// ErrUnknownAction action has no entry in the profile table
	ErrUnknownAction = errors.New("unknown metered action")

	// ErrStoreUnavailable counter store could not be reached
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrInvalidConfig configuration failed validation
	ErrInvalidConfig = errors.New("invalid config")

	// ErrKeyNotFound key does not exist in the store
	ErrKeyNotFound = errors.New("key not found")
)

// ValidationError reports a configuration validation failure
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "quota config validation failed for field '" + e.Field + "': " + e.Message
	}
	if e.Err != nil {
		return "quota config validation failed: " + e.Err.Error()
	}
	return "quota config validation failed"
}

// Unwrap supports errors.Is chains
func (e *ValidationError) Unwrap() error {
	return e.Err
}
