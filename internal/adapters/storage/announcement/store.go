package announcement

import (
	"context"

	domain "noticeboard/internal/domain/announcement"
)

// Store persists announcements.
// Lookups and mutations of an absent id return domain.ErrNotFound.
type Store interface {
	Insert(ctx context.Context, a domain.Announcement) error
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Update(ctx context.Context, a domain.Announcement) error
	Delete(ctx context.Context, id string) error
	// List returns every announcement, newest first.
	List(ctx context.Context) ([]domain.Announcement, error)
	// CountByImageRef reports how many announcements still point at ref.
	CountByImageRef(ctx context.Context, ref string) (int, error)
}
