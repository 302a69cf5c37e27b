// Package blob provides the object storage abstraction holding raw and
// processed lot photographs.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Store defines the contract for object storage.
type Store interface {
	// Fetch returns the object's bytes. Returns ErrNotFound if the key
	// does not exist.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Put stores an object under the key, overwriting any existing one.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes an object. No error if it doesn't exist.
	Delete(ctx context.Context, key string) error
}
