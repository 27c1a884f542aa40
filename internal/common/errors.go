// Package common defines shared constants and sentinel errors used across
// the capsule server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Service-level errors.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Validation errors; see ValidationError for a reason-carrying form.
	ErrInvalidInput = errors.New("invalid input")

	// Slot ledger errors.
	ErrCapacityExceeded = errors.New("all slots are taken for this year")
	ErrSlotConflict     = errors.New("slot conflict")

	// Session token errors.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMalformedPayload = errors.New("malformed token payload")
	ErrUnknownIdentity  = errors.New("unknown identity")
	ErrSecretTooShort   = errors.New("session secret is too short")
)

// ValidationError carries a user-facing reason for rejected input and
// matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid returns a ValidationError with the given reason.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
