package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get() on empty store error = %v, want not found", err)
	}
	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	batch, err := m.BatchGet(ctx, []string{"k", "missing"})
	if err != nil || len(batch) != 1 {
		t.Fatalf("BatchGet() = %v, %v", batch, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get() after delete error = %v", err)
	}
}

func TestMemoryStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if err := m.CompareAndSwap(ctx, "k", nil, []byte("v1")); err != nil {
		t.Fatalf("create CAS error = %v", err)
	}
	if err := m.CompareAndSwap(ctx, "k", nil, []byte("v2")); !core.IsStateConflict(err) {
		t.Fatalf("create on existing key error = %v, want conflict", err)
	}
	if err := m.CompareAndSwap(ctx, "k", []byte("stale"), []byte("v2")); !core.IsStateConflict(err) {
		t.Fatalf("stale CAS error = %v, want conflict", err)
	}
	if err := m.CompareAndSwap(ctx, "k", []byte("v1"), []byte("v2")); err != nil {
		t.Fatalf("CAS error = %v", err)
	}
	got, _ := m.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("value = %q, want v2", got)
	}
	if err := m.CompareAndSwap(ctx, "missing", []byte("x"), []byte("y")); !core.IsStateConflict(err) {
		t.Fatalf("CAS on missing key error = %v, want conflict", err)
	}
}

func TestMemoryStore_CompareAndSwapSingleWinner(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()
	_ = m.Set(ctx, "k", []byte("0"))

	const n = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.CompareAndSwap(ctx, "k", []byte("0"), []byte("1")); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("wins = %d, want exactly 1", wins)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf)
	buf[0] = 'x'
	got, _ := m.Get(ctx, "k")
	got[1] = 'y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %q", again)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(WithMemoryClock(func() time.Time { return now }), WithSweepInterval(0))
	defer m.Close()

	_ = m.Set(ctx, "short", []byte("a"), 10)
	_ = m.Set(ctx, "forever", []byte("b"))
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	now = now.Add(11 * time.Second)
	if _, err := m.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get() expired key error = %v, want not found", err)
	}
	if err := m.CompareAndSwap(ctx, "short", nil, []byte("c")); err != nil {
		t.Fatalf("CAS create over expired key error = %v", err)
	}
	now = now.Add(time.Hour)
	_ = m.Set(ctx, "gone", []byte("d"), 1)
	now = now.Add(2 * time.Second)
	if removed := m.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if m.Len() != 2 {
		t.Errorf("Len() after sweep = %d, want 2", m.Len())
	}
}
