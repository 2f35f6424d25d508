package recipient

import (
	"context"

	domain "noticeboard/internal/domain/recipient"
)

// Store persists the recipient directory.
type Store interface {
	// Add registers r. A second registration of the same email returns domain.ErrDuplicate.
	Add(ctx context.Context, r domain.Recipient) error
	// Remove deletes by id, returning domain.ErrNotFound when absent.
	Remove(ctx context.Context, id string) error
	// List returns all recipients, newest registration first.
	List(ctx context.Context) ([]domain.Recipient, error)
	// Exists reports whether email is registered.
	Exists(ctx context.Context, email string) (bool, error)
}
