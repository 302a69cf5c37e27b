package models

import "errors"

// Sentinel errors for expected request-level conditions. Handlers map these
// to client error responses; anything else is a server error.
var (
	// ErrValidation marks a bad or missing request field. The wrapped
	// message names what was wrong, including expected vs actual counts
	// for image-count mismatches.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a query that matched nothing.
	ErrNotFound = errors.New("not found")
)
