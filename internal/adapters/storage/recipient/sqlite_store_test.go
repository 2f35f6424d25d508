package recipient

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"noticeboard/internal/adapters/storage"
	domain "noticeboard/internal/domain/recipient"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	return NewSQLiteStore(db)
}

var t0 = time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)

// TestAdd_List tests newest registrations are listed first.
func TestAdd_List(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, domain.Recipient{ID: "r1", Email: "b@example.com", CreatedAt: t0})
	s.Add(ctx, domain.Recipient{ID: "r2", Email: "a@example.com", CreatedAt: t0.Add(time.Second)})

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Email != "a@example.com" || list[1].Email != "b@example.com" {
		t.Errorf("unexpected list %+v", list)
	}
	if !list[1].CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", list[1].CreatedAt, t0)
	}
}

// TestAdd_Duplicate tests the unique email constraint.
func TestAdd_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Add(ctx, domain.Recipient{ID: "r1", Email: "a@example.com", CreatedAt: t0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := s.Add(ctx, domain.Recipient{ID: "r2", Email: "a@example.com", CreatedAt: t0})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

// TestExists tests presence checks.
func TestExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, domain.Recipient{ID: "r1", Email: "a@example.com", CreatedAt: t0})

	if ok, err := s.Exists(ctx, "a@example.com"); err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
	if ok, _ := s.Exists(ctx, "z@example.com"); ok {
		t.Error("expected unregistered email to be absent")
	}
}

// TestRemove tests deletion and the NotFound path.
func TestRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, domain.Recipient{ID: "r1", Email: "a@example.com", CreatedAt: t0})

	if err := s.Remove(ctx, "r1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if ok, _ := s.Exists(ctx, "a@example.com"); ok {
		t.Error("expected email gone after remove")
	}
	if err := s.Remove(ctx, "r1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
