package identity

import (
	"errors"
	"fmt"
)

var (
	ErrMissingContact  = errors.New("missing contact")
	ErrInvalidUserType = errors.New("invalid user type")
	ErrNotFound        = errors.New("user not found")
)

// ValidationError marks bad input. It is always a client error.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StoreError is a canonical store failure: unreachable, timed out or
// write rejected.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MirrorError is a relational mirror failure. It is logged by the mirror
// and never returned to a request handler.
type MirrorError struct {
	IdentityID string
	Err        error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror identity %s: %v", e.IdentityID, e.Err)
}

func (e *MirrorError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
