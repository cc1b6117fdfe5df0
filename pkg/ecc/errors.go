package ecc

import (
	"errors"
	"fmt"
)

// Error kinds returned by the arithmetic, signing and key agreement packages.
// Callers match them with errors.Is.
var (
	ErrModulusMismatch    = errors.New("operands belong to different fields")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrInvalidPoint       = errors.New("point is not on the curve")
	ErrInvalidScalar      = errors.New("scalar out of range")
	ErrCurveMismatch      = errors.New("curve mismatch")
	ErrIdentityResult     = errors.New("result is the point at infinity")
	ErrInvariantViolation = errors.New("arithmetic invariant violated")
	ErrInvalidEncoding    = errors.New("invalid encoding")
	ErrUnknownCurve       = errors.New("unknown curve")
	ErrUnknownStrategy    = errors.New("unknown scalar multiplication strategy")
)

// OpError records the operation that produced one of the error kinds above.
type OpError struct {
	Op     string
	Reason string
	Err    error
}

func (e *OpError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewError creates a new OpError.
func NewError(op string, err error, reason string) *OpError {
	return &OpError{
		Op:     op,
		Reason: reason,
		Err:    err,
	}
}

// Errorf creates a new OpError with a formatted reason.
func Errorf(op string, err error, format string, args ...interface{}) *OpError {
	return NewError(op, err, fmt.Sprintf(format, args...))
}
