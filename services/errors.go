package services

import "errors"

// Operation failures cross the service boundary as typed sentinel errors
// so the HTTP layer can map each to a status code without string matching.
var (
	// ErrNotFound means the referenced post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrConflict means a status precondition was violated (already
	// claimed, not claimed, already sold, ...). State is never mutated
	// when it is returned.
	ErrConflict = errors.New("post status conflict")
	// ErrForbidden means the caller does not own the resource.
	ErrForbidden = errors.New("caller is not the resource owner")
	// ErrInvalidOTP means the supplied pickup code does not match the
	// stored one. The post stays claimed and verification can be retried.
	ErrInvalidOTP = errors.New("invalid otp")
)
