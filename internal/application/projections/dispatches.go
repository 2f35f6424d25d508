package projections

import (
	"context"
	"fmt"
	"time"

	domainDispatch "noticeboard/internal/domain/dispatch"
)

// Dispatch list bounds.
const (
	DefaultDispatchLimit = 50
	MaxDispatchLimit     = 500
)

// DispatchView is one notification attempt shaped for the admin API and CLI.
type DispatchView struct {
	ID             string    `json:"id"`
	AnnouncementID string    `json:"announcement_id"`
	Operation      string    `json:"operation"`
	Subject        string    `json:"subject,omitempty"`
	RecipientCount int       `json:"recipient_count"`
	Status         string    `json:"status"`
	MessageID      string    `json:"message_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	AttemptedAt    time.Time `json:"attempted_at"`
	DurationMs     int64     `json:"duration_ms"`
}

// ListDispatchesQuery carries query parameters.
type ListDispatchesQuery struct {
	AnnouncementID string // optional; restricts to one announcement
	Limit          int
}

// ListDispatchesDeps holds dependencies for ListDispatches.
type ListDispatchesDeps struct {
	DispatchLog DispatchLogStore
}

// QueryListDispatches returns recent notification attempts, newest first.
// PRE: none
// POST: Limit is clamped to [1, MaxDispatchLimit], defaulting to DefaultDispatchLimit
func QueryListDispatches(ctx context.Context, query ListDispatchesQuery, deps ListDispatchesDeps) ([]DispatchView, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultDispatchLimit
	}
	limit = min(limit, MaxDispatchLimit)

	var (
		entries []domainDispatch.Entry
		err     error
	)
	if query.AnnouncementID != "" {
		entries, err = deps.DispatchLog.ListByAnnouncement(ctx, query.AnnouncementID)
		if len(entries) > limit {
			entries = entries[:limit]
		}
	} else {
		entries, err = deps.DispatchLog.ListRecent(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}

	views := make([]DispatchView, 0, len(entries))
	for _, e := range entries {
		views = append(views, DispatchView{
			ID:             e.ID,
			AnnouncementID: e.AnnouncementID,
			Operation:      e.Operation,
			Subject:        e.Subject,
			RecipientCount: e.RecipientCount,
			Status:         e.Status,
			MessageID:      e.MessageID,
			Error:          e.ErrorMessage,
			AttemptedAt:    e.AttemptedAt,
			DurationMs:     e.DurationMs,
		})
	}
	return views, nil
}
