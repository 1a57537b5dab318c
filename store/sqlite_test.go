package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "swipekit.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Catalog(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	items := []core.ItemMetadata{
		{ItemID: "b", Tags: core.NewSet("summer", "new"), Category: "dress", Brand: "acme", Price: 30, RatingCount: 10, RatingAverage: 4.5, IsActive: true},
		{ItemID: "a", Tags: core.NewSet("winter"), Category: "coat", Price: 120, IsActive: false},
	}
	if err := s.UpsertItems(ctx, items); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	active, err := s.ListActiveItems(ctx)
	if err != nil {
		t.Fatalf("ListActiveItems() error = %v", err)
	}
	if len(active) != 1 || active[0].ItemID != "b" {
		t.Fatalf("active = %+v", active)
	}
	if !active[0].Tags.Has("new") || active[0].RatingAverage != 4.5 {
		t.Errorf("round trip lost data: %+v", active[0])
	}

	items[1].IsActive = true
	if err := s.UpsertItems(ctx, items[1:]); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}
	active, _ = s.ListActiveItems(ctx)
	if len(active) != 2 {
		t.Errorf("len after reactivation = %d, want 2", len(active))
	}
}

func TestSQLiteStore_Events(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, item := range []string{"x", "y", "z"} {
		ev := core.InteractionEvent{UserID: "u1", ItemID: item, Decision: core.DecisionAccept, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := s.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
	}

	all, err := s.GetEvents(ctx, "u1", time.Time{})
	if err != nil || len(all) != 3 {
		t.Fatalf("GetEvents() = %d, %v", len(all), err)
	}
	if !all[0].Timestamp.Equal(base) || all[2].ItemID != "z" {
		t.Errorf("unexpected order: %+v", all)
	}

	since, _ := s.GetEvents(ctx, "u1", base.Add(time.Minute))
	if len(since) != 2 {
		t.Errorf("since len = %d, want 2", len(since))
	}
	other, _ := s.GetEvents(ctx, "u2", time.Time{})
	if len(other) != 0 {
		t.Errorf("other user len = %d", len(other))
	}
}

func TestSQLiteStore_SessionVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	if _, err := s.LoadState(ctx, "u1"); !core.IsStoreNotFound(err) {
		t.Fatalf("LoadState() error = %v, want not found", err)
	}

	st := core.NewSessionState("u1", now)
	st.Version = 1
	st.ShownItemIDs.Add("a")
	if err := s.SaveState(ctx, st, 0); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := s.SaveState(ctx, st, 0); !core.IsStateConflict(err) {
		t.Fatalf("duplicate create error = %v, want conflict", err)
	}

	next := st.Clone()
	next.ConsecutiveRejections = 2
	next.Version = 2
	if err := s.SaveState(ctx, next, 1); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := s.SaveState(ctx, next, 1); !core.IsStateConflict(err) {
		t.Fatalf("stale write error = %v, want conflict", err)
	}

	got, err := s.LoadState(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if got.Version != 2 || got.ConsecutiveRejections != 2 || !got.ShownItemIDs.Has("a") {
		t.Errorf("loaded state = %+v", got)
	}
}
