// Package blob stores announcement images as opaque byte blobs keyed by a generated reference.
package blob

import (
	"context"
	"errors"
)

// Blob errors
var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("blob reference is invalid")
	ErrEmpty      = errors.New("blob is empty")
)

// Store puts, reads and deletes image bytes by reference.
// A reference is stable for the life of the blob and never reused.
type Store interface {
	// Put stores data and returns its new reference. name is the client's original
	// file name; only its extension is kept.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Get returns the bytes for ref, or ErrNotFound.
	Get(ctx context.Context, ref string) ([]byte, error)
	// Delete removes ref. Deleting an absent ref returns ErrNotFound.
	Delete(ctx context.Context, ref string) error
}
