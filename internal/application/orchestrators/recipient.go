package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"noticeboard/internal/domain/recipient"
)

// RecipientStoreForOrchestrator defines the store interface needed by recipient orchestrators.
type RecipientStoreForOrchestrator interface {
	Add(ctx context.Context, r recipient.Recipient) error
	Remove(ctx context.Context, id string) error
}

// --- Add Recipient ---

// AddRecipientInput carries input for the add recipient orchestrator.
type AddRecipientInput struct {
	Email string
}

// AddRecipientDeps holds dependencies for AddRecipient.
type AddRecipientDeps struct {
	RecipientStore RecipientStoreForOrchestrator
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteAddRecipient registers an address for future notifications.
// PRE: Email is a single bare address
// POST: Normalized address stored; recipient.ErrDuplicate if already registered
func ExecuteAddRecipient(ctx context.Context, input AddRecipientInput, deps AddRecipientDeps) (recipient.Recipient, error) {
	r := recipient.Recipient{
		ID:        deps.GenerateID(),
		Email:     recipient.NormalizeEmail(input.Email),
		CreatedAt: deps.Now(),
	}
	if err := r.Validate(); err != nil {
		return recipient.Recipient{}, err
	}
	if err := deps.RecipientStore.Add(ctx, r); err != nil {
		return recipient.Recipient{}, err
	}

	slog.Info("recipient_event", "event", "recipient_added", "recipient_id", r.ID)
	return r, nil
}

// --- Remove Recipient ---

// RemoveRecipientDeps holds dependencies for RemoveRecipient.
type RemoveRecipientDeps struct {
	RecipientStore RecipientStoreForOrchestrator
}

// ExecuteRemoveRecipient unregisters an address.
// PRE: id is non-empty
// POST: Recipient removed; recipient.ErrNotFound when absent
func ExecuteRemoveRecipient(ctx context.Context, id string, deps RemoveRecipientDeps) error {
	if id == "" {
		return errors.New("recipient ID is required")
	}
	if err := deps.RecipientStore.Remove(ctx, id); err != nil {
		return err
	}
	slog.Info("recipient_event", "event", "recipient_removed", "recipient_id", id)
	return nil
}
