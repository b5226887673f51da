package dracut

import "errors"

// ErrBinaryNotFound is returned when the generator binary cannot be
// resolved inside the build root.
var ErrBinaryNotFound = errors.New("generator binary not found in build root")

// CommandError wraps any error occurred during generator execution.
type CommandError struct {
	Err      error
	ExitCode int
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	return "generator: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
