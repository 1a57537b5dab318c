package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
)

func TestMemoryEventStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryEventStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	events := []core.InteractionEvent{
		{UserID: "u1", ItemID: "b", Decision: core.DecisionReject, Timestamp: base.Add(2 * time.Hour)},
		{UserID: "u1", ItemID: "a", Decision: core.DecisionAccept, Timestamp: base},
		{UserID: "u2", ItemID: "a", Decision: core.DecisionAccept, Timestamp: base},
		{UserID: "u1", ItemID: "c", Decision: core.DecisionAccept, Timestamp: base.Add(time.Hour)},
	}
	for _, ev := range events {
		if err := s.AppendEvent(ctx, ev); err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
	}

	got, err := s.GetEvents(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "c", "b"} {
		if got[i].ItemID != want {
			t.Errorf("event %d = %s, want %s", i, got[i].ItemID, want)
		}
		if got[i].ID == "" {
			t.Errorf("event %d missing id", i)
		}
	}

	recent, _ := s.GetEvents(ctx, "u1", base.Add(30*time.Minute))
	if len(recent) != 2 {
		t.Errorf("since filter len = %d, want 2", len(recent))
	}
}

func TestMemoryEventStore_RejectsInvalid(t *testing.T) {
	s := NewMemoryEventStore()
	err := s.AppendEvent(context.Background(), core.InteractionEvent{UserID: "u", ItemID: "a", Decision: "maybe"})
	if !core.IsInvalidInput(err) {
		t.Errorf("AppendEvent() error = %v, want invalid input", err)
	}
	err = s.AppendEvent(context.Background(), core.InteractionEvent{ItemID: "a", Decision: core.DecisionAccept})
	if !core.IsInvalidInput(err) {
		t.Errorf("AppendEvent() without user error = %v, want invalid input", err)
	}
}
