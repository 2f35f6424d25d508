package projections

import (
	"context"
	"fmt"
	"time"

	domainRecipient "noticeboard/internal/domain/recipient"
)

// RecipientView is a directory entry shaped for clients.
type RecipientView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RecipientsDeps holds dependencies for recipient queries.
type RecipientsDeps struct {
	RecipientStore RecipientStore
}

// QueryListRecipients returns the directory, newest registration first.
func QueryListRecipients(ctx context.Context, deps RecipientsDeps) ([]RecipientView, error) {
	list, err := deps.RecipientStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	views := make([]RecipientView, 0, len(list))
	for _, r := range list {
		views = append(views, RecipientView{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt})
	}
	return views, nil
}

// QueryRecipientExists reports whether an address is registered.
// PRE: none
// POST: The address is normalized before lookup; an empty address is never registered
func QueryRecipientExists(ctx context.Context, email string, deps RecipientsDeps) (bool, error) {
	email = domainRecipient.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}
	exists, err := deps.RecipientStore.Exists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check recipient: %w", err)
	}
	return exists, nil
}
