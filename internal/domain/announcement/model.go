package announcement

import (
	"errors"
	"strings"
	"time"
)

// Operation kinds announced to recipients after a committed mutation.
const (
	OperationCreated = "created"
	OperationUpdated = "updated"
	OperationDeleted = "deleted"
)

// MaxTitleLength bounds the title so it fits in a mail subject line.
const MaxTitleLength = 200

// Domain errors
var (
	ErrEmptyTitle       = errors.New("announcement title cannot be empty")
	ErrTitleTooLong     = errors.New("announcement title must be 200 characters or fewer")
	ErrEmptyID          = errors.New("announcement ID is required")
	ErrNotFound         = errors.New("announcement not found")
	ErrStorageFailure   = errors.New("announcement storage failure")
	ErrInvalidOperation = errors.New("operation must be one of: created, updated, deleted")
)

// ValidOperations contains all operation kinds a notification can describe.
var ValidOperations = []string{OperationCreated, OperationUpdated, OperationDeleted}

// Announcement is a published post shown to staff.
// Body is free text; embedded newlines are significant and survive storage unchanged.
type Announcement struct {
	ID        string
	Title     string
	Body      string
	ImageRef  string // Blob reference; empty when the post has no image
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the Announcement has valid data.
// PRE: Announcement struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Announcement) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(a.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// HasImage reports whether the announcement references a stored image.
// INVARIANT: ImageRef is not mutated
func (a *Announcement) HasImage() bool {
	return a.ImageRef != ""
}

// IsValidOperation reports whether op names a known notification kind.
func IsValidOperation(op string) bool {
	for _, v := range ValidOperations {
		if v == op {
			return true
		}
	}
	return false
}

// ResolveImageRef decides which blob reference an edited announcement keeps.
// Priority: explicit removal, then a freshly stored replacement, then the existing reference.
// PRE: newRef is the reference of an already-stored replacement, or empty
// POST: Returns the reference to persist (empty means no image)
func ResolveImageRef(existingRef, newRef string, remove bool) string {
	if remove {
		return ""
	}
	if newRef != "" {
		return newRef
	}
	return existingRef
}
