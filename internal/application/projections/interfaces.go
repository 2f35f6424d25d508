package projections

import (
	"context"

	domainAnnouncement "noticeboard/internal/domain/announcement"
	domainDispatch "noticeboard/internal/domain/dispatch"
	domainRecipient "noticeboard/internal/domain/recipient"
)

// AnnouncementStore interface for announcement queries.
type AnnouncementStore interface {
	GetByID(ctx context.Context, id string) (domainAnnouncement.Announcement, error)
	List(ctx context.Context) ([]domainAnnouncement.Announcement, error)
}

// RecipientStore interface for recipient directory queries.
type RecipientStore interface {
	List(ctx context.Context) ([]domainRecipient.Recipient, error)
	Exists(ctx context.Context, email string) (bool, error)
}

// DispatchLogStore interface for dispatch history queries.
type DispatchLogStore interface {
	ListRecent(ctx context.Context, limit int) ([]domainDispatch.Entry, error)
	ListByAnnouncement(ctx context.Context, announcementID string) ([]domainDispatch.Entry, error)
}
