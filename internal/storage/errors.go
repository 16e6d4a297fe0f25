package storage

import "errors"

var (
	// ErrDuplicateArticle is returned when an article with the same URL
	// already exists for the same user.
	ErrDuplicateArticle = errors.New("article already saved")

	// ErrNotFound is returned by direct update/delete operations on a
	// missing id. Convenience toggles treat a missing id as a no-op.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when a required field is empty or
	// malformed.
	ErrInvalidInput = errors.New("invalid input")
)
