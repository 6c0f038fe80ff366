package storage

import "errors"

var (
	// ErrNotReady is returned when no clustering result has been loaded yet.
	ErrNotReady = errors.New("no analysis results, run analyze first")
	// ErrNotFound is returned when a group, asset or session id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed mutation parameters.
	ErrInvalidInput = errors.New("invalid input")
)
