package dispatchlog

import (
	"context"

	domain "noticeboard/internal/domain/dispatch"
)

// Store persists notification attempt records.
type Store interface {
	// Save writes one attempt.
	// PRE: e has been validated
	// POST: Entry is persisted; entries are append-only
	Save(ctx context.Context, e domain.Entry) error

	// ListRecent returns the newest attempts first.
	// PRE: limit > 0
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListByAnnouncement returns every attempt for one announcement, newest first.
	// PRE: announcementID is non-empty
	ListByAnnouncement(ctx context.Context, announcementID string) ([]domain.Entry, error)
}
