package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/store"
)

func newItem(id string, active bool) *core.Item {
	return core.NewItem(core.ItemMetadata{ItemID: id, IsActive: active})
}

func ids(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilterNode_ActiveAndShown(t *testing.T) {
	st := core.NewSessionState("u1", time.Now())
	st.ShownItemIDs.Add("b")
	rctx := &core.RecommendContext{UserID: "u1", Session: st}

	node := NewFilterNode(ActiveFilter{}, ShownFilter{})
	items := []*core.Item{newItem("a", true), newItem("b", true), newItem("c", false), nil}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := ids(out); len(got) != 1 || got[0] != "a" {
		t.Fatalf("out = %v, want [a]", got)
	}
	if lbl, ok := items[2].Labels["filtered"]; !ok || lbl.Source != "filter.active" {
		t.Errorf("inactive item label = %+v", items[2].Labels)
	}
}

func TestShownFilter_NoSession(t *testing.T) {
	ok, err := ShownFilter{}.ShouldFilter(context.Background(), &core.RecommendContext{}, newItem("a", true))
	if err != nil || ok {
		t.Errorf("ShouldFilter() = %v, %v; want false, nil", ok, err)
	}
}

func TestBlocklistFilter_StaticAndStore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	adapter := NewStoreAdapter(kv)
	if err := adapter.SetBlocklist(ctx, "block", []string{"g"}); err != nil {
		t.Fatalf("SetBlocklist() error = %v", err)
	}
	if err := adapter.SetBlocklist(ctx, "block:user:u1", []string{"u"}); err != nil {
		t.Fatalf("SetBlocklist() error = %v", err)
	}

	f := NewBlocklistFilter([]string{"s"}, adapter, "block", "block:user")
	node := NewFilterNode(f)

	items := []*core.Item{newItem("s", true), newItem("g", true), newItem("u", true), newItem("ok", true)}
	out, err := node.Process(ctx, &core.RecommendContext{UserID: "u1"}, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := ids(out); len(got) != 1 || got[0] != "ok" {
		t.Errorf("u1 out = %v, want [ok]", got)
	}

	items = []*core.Item{newItem("u", true), newItem("g", true)}
	out, _ = node.Process(ctx, &core.RecommendContext{UserID: "u2"}, items)
	if got := ids(out); len(got) != 1 || got[0] != "u" {
		t.Errorf("u2 out = %v, want [u]", got)
	}
}

func TestStoreAdapter_MissingKey(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	got, err := NewStoreAdapter(kv).GetBlocklist(context.Background(), "nope")
	if err != nil || got != nil {
		t.Errorf("GetBlocklist() = %v, %v; want nil, nil", got, err)
	}
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter(`price > 500.0 && !("luxury" in tags)`)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	rctx := &core.RecommendContext{Now: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		meta core.ItemMetadata
		want bool
	}{
		{"cheap", core.ItemMetadata{ItemID: "a", Price: 20}, false},
		{"expensive", core.ItemMetadata{ItemID: "b", Price: 900}, true},
		{"expensive luxury", core.ItemMetadata{ItemID: "c", Price: 900, Tags: core.NewSet("luxury")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem(tt.meta))
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NewExprFilter(`price >`); err == nil {
		t.Error("expected compile error")
	}
}

func TestExprFilter_ScoreReflectsPipelinePosition(t *testing.T) {
	f, err := NewExprFilter(`score < 40.0`)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	ctx := context.Background()

	// 打分之前分数为 0，条件对所有物品成立
	unscored := core.NewItem(core.ItemMetadata{ItemID: "a"})
	if got, _ := f.ShouldFilter(ctx, nil, unscored); !got {
		t.Error("unscored item should match score < 40")
	}

	scored := core.NewItem(core.ItemMetadata{ItemID: "b"})
	scored.Score = 55
	if got, _ := f.ShouldFilter(ctx, nil, scored); got {
		t.Error("item scored 55 should pass score < 40")
	}
}
