package submission

import "errors"

var (
	// ErrNotFound is returned when no submission has the requested id.
	ErrNotFound = errors.New("submission not found")
	// ErrVerificationFailed wraps every human verification failure.
	ErrVerificationFailed = errors.New("human verification failed")
	// ErrMalformed is returned for a body that is not a usable form.
	ErrMalformed = errors.New("malformed submission")
)
