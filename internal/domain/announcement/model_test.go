package announcement

import (
	"strings"
	"testing"
)

// TestAnnouncement_Validate_Valid tests that a populated announcement passes validation.
func TestAnnouncement_Validate_Valid(t *testing.T) {
	a := Announcement{ID: "a1", Title: "Quarterly awards", Body: "Line one\nLine two"}
	if err := a.Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

// TestAnnouncement_Validate_EmptyBodyAllowed tests that a title-only post is valid.
func TestAnnouncement_Validate_EmptyBodyAllowed(t *testing.T) {
	a := Announcement{ID: "a1", Title: "Heads up"}
	if err := a.Validate(); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

// TestAnnouncement_Validate_EmptyTitle tests that a blank title is rejected.
func TestAnnouncement_Validate_EmptyTitle(t *testing.T) {
	a := Announcement{ID: "a1", Title: "   ", Body: "content"}
	if err := a.Validate(); err != ErrEmptyTitle {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

// TestAnnouncement_Validate_TitleTooLong tests the title length limit.
func TestAnnouncement_Validate_TitleTooLong(t *testing.T) {
	a := Announcement{ID: "a1", Title: strings.Repeat("x", MaxTitleLength+1)}
	if err := a.Validate(); err != ErrTitleTooLong {
		t.Errorf("expected ErrTitleTooLong, got %v", err)
	}
}

// TestAnnouncement_HasImage tests image presence detection.
func TestAnnouncement_HasImage(t *testing.T) {
	a := Announcement{}
	if a.HasImage() {
		t.Error("expected no image")
	}
	a.ImageRef = "IMAGE-1.png"
	if !a.HasImage() {
		t.Error("expected image")
	}
}

// TestResolveImageRef_RemoveWins tests that removal beats a new upload.
func TestResolveImageRef_RemoveWins(t *testing.T) {
	if got := ResolveImageRef("old.png", "new.png", true); got != "" {
		t.Errorf("expected empty ref, got %q", got)
	}
	if got := ResolveImageRef("old.png", "", true); got != "" {
		t.Errorf("expected empty ref, got %q", got)
	}
}

// TestResolveImageRef_NewReplacesExisting tests that a new upload replaces the old reference.
func TestResolveImageRef_NewReplacesExisting(t *testing.T) {
	if got := ResolveImageRef("old.png", "new.png", false); got != "new.png" {
		t.Errorf("expected new.png, got %q", got)
	}
}

// TestResolveImageRef_KeepsExisting tests that no change keeps the existing reference.
func TestResolveImageRef_KeepsExisting(t *testing.T) {
	if got := ResolveImageRef("old.png", "", false); got != "old.png" {
		t.Errorf("expected old.png, got %q", got)
	}
	if got := ResolveImageRef("", "", false); got != "" {
		t.Errorf("expected empty ref, got %q", got)
	}
}

// TestIsValidOperation tests operation kind validation.
func TestIsValidOperation(t *testing.T) {
	for _, op := range ValidOperations {
		if !IsValidOperation(op) {
			t.Errorf("expected %q to be valid", op)
		}
	}
	if IsValidOperation("archived") {
		t.Error("expected archived to be invalid")
	}
}
