package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	domainAnnouncement "noticeboard/internal/domain/announcement"
	domainDispatch "noticeboard/internal/domain/dispatch"
	domainRecipient "noticeboard/internal/domain/recipient"
)

type mockAnnouncementStore struct {
	items []domainAnnouncement.Announcement
	err   error
}

// GetByID returns a seeded announcement by ID.
// PRE: id is non-empty
// POST: Returns the seeded announcement or ErrNotFound
func (m *mockAnnouncementStore) GetByID(_ context.Context, id string) (domainAnnouncement.Announcement, error) {
	for _, a := range m.items {
		if a.ID == id {
			return a, nil
		}
	}
	return domainAnnouncement.Announcement{}, domainAnnouncement.ErrNotFound
}

// List returns all seeded announcements in seed order.
func (m *mockAnnouncementStore) List(_ context.Context) ([]domainAnnouncement.Announcement, error) {
	return m.items, m.err
}

type mockRecipientStore struct {
	items   []domainRecipient.Recipient
	checked string
}

// List returns all seeded recipients.
func (m *mockRecipientStore) List(_ context.Context) ([]domainRecipient.Recipient, error) {
	return m.items, nil
}

// Exists records the looked-up address and matches it against the seed.
func (m *mockRecipientStore) Exists(_ context.Context, email string) (bool, error) {
	m.checked = email
	for _, r := range m.items {
		if r.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type mockDispatchLog struct {
	entries   []domainDispatch.Entry
	lastLimit int
}

// ListRecent returns up to limit seeded entries.
func (m *mockDispatchLog) ListRecent(_ context.Context, limit int) ([]domainDispatch.Entry, error) {
	m.lastLimit = limit
	if len(m.entries) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

// ListByAnnouncement returns seeded entries for one announcement.
func (m *mockDispatchLog) ListByAnnouncement(_ context.Context, id string) ([]domainDispatch.Entry, error) {
	var out []domainDispatch.Entry
	for _, e := range m.entries {
		if e.AnnouncementID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

var testTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func seededAnnouncements() *mockAnnouncementStore {
	return &mockAnnouncementStore{items: []domainAnnouncement.Announcement{
		{ID: "a2", Title: "Second", Body: "line1\nline2", ImageRef: "IMAGE-x.png", CreatedAt: testTime, UpdatedAt: testTime.Add(time.Hour)},
		{ID: "a1", Title: "First", Body: "text", CreatedAt: testTime.Add(-time.Hour)},
	}}
}

// TestQueryListAnnouncements_NoView verifies editable is omitted without a view.
func TestQueryListAnnouncements_NoView(t *testing.T) {
	views, err := QueryListAnnouncements(context.Background(), ListAnnouncementsQuery{}, ListAnnouncementsDeps{AnnouncementStore: seededAnnouncements()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 || views[0].ID != "a2" {
		t.Fatalf("unexpected views %+v", views)
	}
	if views[0].Editable != nil {
		t.Error("expected Editable omitted")
	}
	if views[0].ImageURL == nil || *views[0].ImageURL != "IMAGE-x.png" {
		t.Errorf("ImageURL = %v", views[0].ImageURL)
	}
	if views[1].ImageURL != nil || views[1].UpdatedAt != nil {
		t.Error("expected nil image and update time for an unedited text post")
	}
	if views[0].Content != "line1\nline2" {
		t.Errorf("Content = %q", views[0].Content)
	}
}

// TestQueryListAnnouncements_ViewSetsEditable verifies the explicit capability flag.
func TestQueryListAnnouncements_ViewSetsEditable(t *testing.T) {
	for view, want := range map[string]bool{ViewAdmin: true, ViewEmployee: false} {
		views, err := QueryListAnnouncements(context.Background(), ListAnnouncementsQuery{View: view}, ListAnnouncementsDeps{AnnouncementStore: seededAnnouncements()})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", view, err)
		}
		for _, v := range views {
			if v.Editable == nil || *v.Editable != want {
				t.Errorf("%s: Editable = %v, want %v", view, v.Editable, want)
			}
		}
	}
}

// TestQueryListAnnouncements_InvalidView verifies unknown views are rejected.
func TestQueryListAnnouncements_InvalidView(t *testing.T) {
	_, err := QueryListAnnouncements(context.Background(), ListAnnouncementsQuery{View: "root"}, ListAnnouncementsDeps{AnnouncementStore: seededAnnouncements()})
	if !errors.Is(err, ErrInvalidView) {
		t.Errorf("expected ErrInvalidView, got %v", err)
	}
}

// TestQueryListAnnouncements_StoreError verifies store errors are wrapped.
func TestQueryListAnnouncements_StoreError(t *testing.T) {
	boom := errors.New("disk I/O error")
	_, err := QueryListAnnouncements(context.Background(), ListAnnouncementsQuery{}, ListAnnouncementsDeps{AnnouncementStore: &mockAnnouncementStore{err: boom}})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

// TestQueryGetAnnouncement verifies lookup and the absent-id path.
func TestQueryGetAnnouncement(t *testing.T) {
	deps := GetAnnouncementDeps{AnnouncementStore: seededAnnouncements()}
	v, err := QueryGetAnnouncement(context.Background(), "a1", deps)
	if err != nil || v.Title != "First" {
		t.Fatalf("got %+v, %v", v, err)
	}
	if _, err := QueryGetAnnouncement(context.Background(), "missing", deps); !errors.Is(err, domainAnnouncement.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := QueryGetAnnouncement(context.Background(), "", deps); !errors.Is(err, domainAnnouncement.ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}
}

// TestQueryRecipientExists_Normalizes verifies lookups use the normalized address.
func TestQueryRecipientExists_Normalizes(t *testing.T) {
	store := &mockRecipientStore{items: []domainRecipient.Recipient{{ID: "r1", Email: "staff@example.com", CreatedAt: testTime}}}
	deps := RecipientsDeps{RecipientStore: store}

	exists, err := QueryRecipientExists(context.Background(), " Staff@Example.com", deps)
	if err != nil || !exists {
		t.Fatalf("exists = %v, err = %v", exists, err)
	}
	if store.checked != "staff@example.com" {
		t.Errorf("looked up %q", store.checked)
	}
	if exists, _ := QueryRecipientExists(context.Background(), "   ", deps); exists {
		t.Error("expected blank address to be unregistered")
	}
}

// TestQueryListRecipients verifies the directory is returned in store order.
func TestQueryListRecipients(t *testing.T) {
	store := &mockRecipientStore{items: []domainRecipient.Recipient{
		{ID: "r2", Email: "b@example.com", CreatedAt: testTime},
		{ID: "r1", Email: "a@example.com", CreatedAt: testTime.Add(-time.Minute)},
	}}
	views, err := QueryListRecipients(context.Background(), RecipientsDeps{RecipientStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 || views[0].Email != "b@example.com" {
		t.Errorf("unexpected views %+v", views)
	}
}

// TestQueryListDispatches_Limits verifies default and maximum limits.
func TestQueryListDispatches_Limits(t *testing.T) {
	log := &mockDispatchLog{}
	deps := ListDispatchesDeps{DispatchLog: log}

	QueryListDispatches(context.Background(), ListDispatchesQuery{}, deps)
	if log.lastLimit != DefaultDispatchLimit {
		t.Errorf("default limit = %d", log.lastLimit)
	}
	QueryListDispatches(context.Background(), ListDispatchesQuery{Limit: 10_000}, deps)
	if log.lastLimit != MaxDispatchLimit {
		t.Errorf("clamped limit = %d", log.lastLimit)
	}
}

// TestQueryListDispatches_ByAnnouncement verifies filtering and field mapping.
func TestQueryListDispatches_ByAnnouncement(t *testing.T) {
	log := &mockDispatchLog{entries: []domainDispatch.Entry{
		{ID: "d2", AnnouncementID: "a1", Operation: "updated", Status: domainDispatch.StatusFailed, ErrorMessage: "timeout", AttemptedAt: testTime},
		{ID: "d1", AnnouncementID: "a2", Operation: "created", Status: domainDispatch.StatusSent, MessageID: "m1", AttemptedAt: testTime},
	}}
	views, err := QueryListDispatches(context.Background(), ListDispatchesQuery{AnnouncementID: "a1", Limit: 1}, ListDispatchesDeps{DispatchLog: log})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].ID != "d2" || views[0].Error != "timeout" {
		t.Errorf("unexpected views %+v", views)
	}
}
