package hooks

import (
	"errors"
	"fmt"
)

// SevereError is the distinguished failure signal a hook can return to
// indicate the environment is unusable and the run must stop. Unlike ordinary
// hook errors, which are logged and tolerated, a SevereError aborts the
// remaining hooks of the lifecycle point and propagates to the caller.
type SevereError struct {
	Err error
}

func (e *SevereError) Error() string {
	return fmt.Sprintf("severe service error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *SevereError) Unwrap() error {
	return e.Err
}

// NewSevereError wraps err as a severe, run-aborting failure.
func NewSevereError(err error) *SevereError {
	return &SevereError{Err: err}
}

// Severef creates a severe failure from a format string.
func Severef(format string, args ...any) *SevereError {
	return &SevereError{Err: fmt.Errorf(format, args...)}
}

// IsSevere checks if the error is or wraps a SevereError
func IsSevere(err error) bool {
	var severeErr *SevereError
	return err != nil && errors.As(err, &severeErr)
}
