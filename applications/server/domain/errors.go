package domain

import "errors"

var (
	// ErrBlobNotFound is returned when no blob exists for a given id.
	ErrBlobNotFound = errors.New("file not found")
	// ErrProfileNotFound is returned when an owner patch targets a
	// user/startup/investor document that does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)
