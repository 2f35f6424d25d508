package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"noticeboard/internal/adapters/blob"
	"noticeboard/internal/domain/announcement"
	"noticeboard/internal/domain/notification"
)

// AnnouncementStoreForOrchestrator defines the store interface needed by announcement orchestrators.
type AnnouncementStoreForOrchestrator interface {
	Insert(ctx context.Context, a announcement.Announcement) error
	GetByID(ctx context.Context, id string) (announcement.Announcement, error)
	Update(ctx context.Context, a announcement.Announcement) error
	Delete(ctx context.Context, id string) error
	CountByImageRef(ctx context.Context, ref string) (int, error)
}

// ImageBlobStore stores announcement images by reference.
type ImageBlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// ImageUpload is an image supplied with a create or update request.
type ImageUpload struct {
	Name string // Client file name; only the extension is kept
	Data []byte
}

func (u *ImageUpload) present() bool {
	return u != nil && len(u.Data) > 0
}

// storageFailure wraps err so callers can match announcement.ErrStorageFailure.
func storageFailure(step string, err error) error {
	return fmt.Errorf("%s: %w: %w", step, announcement.ErrStorageFailure, err)
}

// --- Create Announcement ---

// CreateAnnouncementInput carries input for the create announcement orchestrator.
type CreateAnnouncementInput struct {
	Title string
	Body  string
	Image *ImageUpload
}

// CreateAnnouncementDeps holds dependencies for CreateAnnouncement.
type CreateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	Blobs             ImageBlobStore
	Notify            NotifyDeps
	GenerateID        func() string
	Now               func() time.Time
}

// CreateAnnouncementResult is returned once the record is committed.
type CreateAnnouncementResult struct {
	Announcement announcement.Announcement
	ImageDropped bool // An image was supplied but could not be stored
	Notify       NotifyOutcome
}

// Message describes the outcome for the caller.
func (r CreateAnnouncementResult) Message() string {
	msg := notifyMessage("Saved", r.Notify)
	if r.ImageDropped {
		msg += "; image could not be stored"
	}
	return msg
}

// ExecuteCreateAnnouncement publishes a new announcement, then notifies recipients.
// PRE: Title is non-empty
// POST: Record committed with a fresh time-ordered ID; one notify attempt made
// when recipients exist; notification failures never fail the call
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (CreateAnnouncementResult, error) {
	a, image, dropped, err := commitCreate(ctx, input, deps)
	if err != nil {
		return CreateAnnouncementResult{}, err
	}

	outcome := notifyRecipients(ctx, a.ID, notification.Request{
		Operation: announcement.OperationCreated,
		Title:     a.Title,
		Body:      a.Body,
		Image:     image,
	}, deps.Notify)

	return CreateAnnouncementResult{Announcement: a, ImageDropped: dropped, Notify: outcome}, nil
}

func commitCreate(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (announcement.Announcement, *notification.Image, bool, error) {
	a := announcement.Announcement{
		ID:        deps.GenerateID(),
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		CreatedAt: deps.Now(),
	}
	if err := a.Validate(); err != nil {
		return announcement.Announcement{}, nil, false, err
	}

	// Losing the image must not block publishing the text.
	var image *notification.Image
	dropped := false
	if input.Image.present() {
		ref, err := deps.Blobs.Put(ctx, input.Image.Name, input.Image.Data)
		if err != nil {
			slog.Warn("announcement_image_store_failed", "announcement_id", a.ID, "error", err)
			dropped = true
		} else {
			a.ImageRef = ref
			image = &notification.Image{Name: ref, Data: input.Image.Data}
		}
	}

	if err := deps.AnnouncementStore.Insert(ctx, a); err != nil {
		if a.ImageRef != "" {
			discardBlob(ctx, deps.Blobs, a.ImageRef, a.ID)
		}
		return announcement.Announcement{}, nil, false, storageFailure("insert announcement", err)
	}

	slog.Info("announcement_event", "event", "announcement_created", "announcement_id", a.ID, "has_image", a.HasImage())
	return a, image, dropped, nil
}

// --- Update Announcement ---

// UpdateAnnouncementInput carries input for the update announcement orchestrator.
// RemoveImage wins over a supplied Image.
type UpdateAnnouncementInput struct {
	ID          string
	Title       string
	Body        string
	Image       *ImageUpload
	RemoveImage bool
}

// UpdateAnnouncementDeps holds dependencies for UpdateAnnouncement.
type UpdateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	Blobs             ImageBlobStore
	Notify            NotifyDeps
	Now               func() time.Time
}

// UpdateAnnouncementResult is returned once the update is committed.
type UpdateAnnouncementResult struct {
	Announcement announcement.Announcement
	Notify       NotifyOutcome
}

// Message describes the outcome for the caller.
func (r UpdateAnnouncementResult) Message() string {
	return notifyMessage("Updated", r.Notify)
}

// ExecuteUpdateAnnouncement edits an announcement, reconciles its image, then notifies recipients.
// PRE: ID and Title are non-empty
// POST: Record holds the new title, body and resolved image reference; a superseded
// blob no longer referenced by any record is deleted; one notify attempt reflects the
// post-update state
func ExecuteUpdateAnnouncement(ctx context.Context, input UpdateAnnouncementInput, deps UpdateAnnouncementDeps) (UpdateAnnouncementResult, error) {
	if input.ID == "" {
		return UpdateAnnouncementResult{}, announcement.ErrEmptyID
	}

	existing, err := deps.AnnouncementStore.GetByID(ctx, input.ID)
	if errors.Is(err, announcement.ErrNotFound) {
		return UpdateAnnouncementResult{}, err
	}
	if err != nil {
		return UpdateAnnouncementResult{}, storageFailure("read announcement", err)
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Body = input.Body
	updated.UpdatedAt = deps.Now()
	if err := updated.Validate(); err != nil {
		return UpdateAnnouncementResult{}, err
	}

	var newRef string
	if !input.RemoveImage && input.Image.present() {
		newRef, err = deps.Blobs.Put(ctx, input.Image.Name, input.Image.Data)
		if err != nil {
			return UpdateAnnouncementResult{}, storageFailure("store image", err)
		}
	}
	updated.ImageRef = announcement.ResolveImageRef(existing.ImageRef, newRef, input.RemoveImage)

	if err := deps.AnnouncementStore.Update(ctx, updated); err != nil {
		if newRef != "" {
			discardBlob(ctx, deps.Blobs, newRef, updated.ID)
		}
		if errors.Is(err, announcement.ErrNotFound) {
			return UpdateAnnouncementResult{}, err
		}
		return UpdateAnnouncementResult{}, storageFailure("update announcement", err)
	}

	slog.Info("announcement_event", "event", "announcement_updated", "announcement_id", updated.ID,
		"image_changed", existing.ImageRef != updated.ImageRef, "has_image", updated.HasImage())

	if existing.ImageRef != "" && existing.ImageRef != updated.ImageRef {
		releaseImage(ctx, deps.AnnouncementStore, deps.Blobs, existing.ImageRef, updated.ID)
	}

	var image *notification.Image
	switch {
	case newRef != "" && updated.ImageRef == newRef:
		image = &notification.Image{Name: newRef, Data: input.Image.Data}
	case updated.ImageRef != "":
		image = loadImage(ctx, deps.Blobs, updated.ImageRef, updated.ID)
	}

	outcome := notifyRecipients(ctx, updated.ID, notification.Request{
		Operation: announcement.OperationUpdated,
		Title:     updated.Title,
		Body:      updated.Body,
		Image:     image,
	}, deps.Notify)

	return UpdateAnnouncementResult{Announcement: updated, Notify: outcome}, nil
}

// --- Delete Announcement ---

// DeleteAnnouncementDeps holds dependencies for DeleteAnnouncement.
type DeleteAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	Blobs             ImageBlobStore
	Notify            NotifyDeps
}

// DeleteAnnouncementResult carries the pre-deletion snapshot.
type DeleteAnnouncementResult struct {
	Snapshot announcement.Announcement
	Notify   NotifyOutcome
}

// Message describes the outcome for the caller.
func (r DeleteAnnouncementResult) Message() string {
	return notifyMessage("Deleted", r.Notify)
}

// ExecuteDeleteAnnouncement removes an announcement and sends a cancellation built from
// the snapshot taken before deletion.
// PRE: id is non-empty
// POST: Record is gone; one notify attempt reflects the snapshot, including its image;
// the image blob is deleted afterwards when nothing else references it
func ExecuteDeleteAnnouncement(ctx context.Context, id string, deps DeleteAnnouncementDeps) (DeleteAnnouncementResult, error) {
	if id == "" {
		return DeleteAnnouncementResult{}, announcement.ErrEmptyID
	}

	snapshot, err := deps.AnnouncementStore.GetByID(ctx, id)
	if errors.Is(err, announcement.ErrNotFound) {
		return DeleteAnnouncementResult{}, err
	}
	if err != nil {
		return DeleteAnnouncementResult{}, storageFailure("read announcement", err)
	}

	// Read the image while the record still guarantees it exists.
	var image *notification.Image
	if snapshot.HasImage() {
		image = loadImage(ctx, deps.Blobs, snapshot.ImageRef, snapshot.ID)
	}

	if err := deps.AnnouncementStore.Delete(ctx, id); err != nil {
		if errors.Is(err, announcement.ErrNotFound) {
			return DeleteAnnouncementResult{}, err
		}
		return DeleteAnnouncementResult{}, storageFailure("delete announcement", err)
	}

	slog.Info("announcement_event", "event", "announcement_deleted", "announcement_id", id, "had_image", snapshot.HasImage())

	outcome := notifyRecipients(ctx, id, notification.Request{
		Operation: announcement.OperationDeleted,
		Title:     snapshot.Title,
		Body:      snapshot.Body,
		Image:     image,
	}, deps.Notify)

	if snapshot.HasImage() {
		releaseImage(ctx, deps.AnnouncementStore, deps.Blobs, snapshot.ImageRef, id)
	}

	return DeleteAnnouncementResult{Snapshot: snapshot, Notify: outcome}, nil
}

// --- Blob housekeeping ---

// loadImage reads a stored image for a notification. A missing or unreadable blob
// degrades the notification to text only.
func loadImage(ctx context.Context, blobs ImageBlobStore, ref, announcementID string) *notification.Image {
	data, err := blobs.Get(ctx, ref)
	if err != nil {
		slog.Warn("announcement_image_load_failed", "announcement_id", announcementID, "image_ref", ref, "error", err)
		return nil
	}
	return &notification.Image{Name: ref, Data: data}
}

// releaseImage deletes ref once no announcement points at it. Failures are logged only.
func releaseImage(ctx context.Context, store AnnouncementStoreForOrchestrator, blobs ImageBlobStore, ref, announcementID string) {
	ctx = context.WithoutCancel(ctx)
	n, err := store.CountByImageRef(ctx, ref)
	if err != nil {
		slog.Warn("announcement_image_release_failed", "announcement_id", announcementID, "image_ref", ref, "error", err)
		return
	}
	if n > 0 {
		slog.Info("announcement_image_retained", "announcement_id", announcementID, "image_ref", ref, "references", n)
		return
	}
	discardBlob(ctx, blobs, ref, announcementID)
}

// discardBlob deletes ref, tolerating an already-missing blob.
func discardBlob(ctx context.Context, blobs ImageBlobStore, ref, announcementID string) {
	err := blobs.Delete(context.WithoutCancel(ctx), ref)
	switch {
	case err == nil:
		slog.Info("announcement_image_deleted", "announcement_id", announcementID, "image_ref", ref)
	case errors.Is(err, blob.ErrNotFound):
	default:
		slog.Warn("announcement_image_delete_failed", "announcement_id", announcementID, "image_ref", ref, "error", err)
	}
}
