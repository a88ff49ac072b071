package domain

import "errors"

var (
	// ErrNotFound signals the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a duplicate record or an invalid state transition.
	ErrConflict = errors.New("conflict")
	// ErrForbidden signals an ownership or role mismatch.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid signals a request that failed validation.
	ErrInvalid = errors.New("invalid request")
	// ErrUnauthorized signals missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
