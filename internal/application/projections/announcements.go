package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainAnnouncement "noticeboard/internal/domain/announcement"
)

// Viewer kinds accepted by the announcement list.
const (
	ViewAdmin    = "admin"
	ViewEmployee = "employee"
)

// ErrInvalidView is returned for a view other than admin or employee.
var ErrInvalidView = errors.New("view must be one of: admin, employee")

// AnnouncementView is an announcement shaped for clients.
// ImageURL is the blob reference, resolved by clients under /uploads/.
type AnnouncementView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ImageURL  *string    `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Editable  *bool      `json:"editable,omitempty"`
}

// ListAnnouncementsQuery carries query parameters.
type ListAnnouncementsQuery struct {
	View string // "", admin or employee
}

// ListAnnouncementsDeps holds dependencies for ListAnnouncements.
type ListAnnouncementsDeps struct {
	AnnouncementStore AnnouncementStore
}

// QueryListAnnouncements returns every announcement, newest first.
// PRE: query.View is empty, admin or employee
// POST: Editable is set on every item when a view is given, and omitted otherwise
func QueryListAnnouncements(ctx context.Context, query ListAnnouncementsQuery, deps ListAnnouncementsDeps) ([]AnnouncementView, error) {
	var editable *bool
	switch query.View {
	case "":
	case ViewAdmin, ViewEmployee:
		v := query.View == ViewAdmin
		editable = &v
	default:
		return nil, ErrInvalidView
	}

	items, err := deps.AnnouncementStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	views := make([]AnnouncementView, 0, len(items))
	for _, a := range items {
		v := toAnnouncementView(a)
		v.Editable = editable
		views = append(views, v)
	}
	return views, nil
}

// GetAnnouncementDeps holds dependencies for GetAnnouncement.
type GetAnnouncementDeps struct {
	AnnouncementStore AnnouncementStore
}

// QueryGetAnnouncement returns one announcement by id.
// PRE: id is non-empty
// POST: Returns domain ErrNotFound unchanged for an absent id
func QueryGetAnnouncement(ctx context.Context, id string, deps GetAnnouncementDeps) (AnnouncementView, error) {
	if id == "" {
		return AnnouncementView{}, domainAnnouncement.ErrEmptyID
	}
	a, err := deps.AnnouncementStore.GetByID(ctx, id)
	if err != nil {
		return AnnouncementView{}, err
	}
	return toAnnouncementView(a), nil
}

func toAnnouncementView(a domainAnnouncement.Announcement) AnnouncementView {
	v := AnnouncementView{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Body,
		CreatedAt: a.CreatedAt,
	}
	if a.HasImage() {
		ref := a.ImageRef
		v.ImageURL = &ref
	}
	if !a.UpdatedAt.IsZero() {
		updated := a.UpdatedAt
		v.UpdatedAt = &updated
	}
	return v
}
