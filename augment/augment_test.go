package augment

import (
	"math"
	"testing"
	"time"

	"github.com/rushteam/swipekit/core"
)

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, core.TagWinter},
		{time.February, core.TagWinter},
		{time.March, core.TagSpring},
		{time.May, core.TagSpring},
		{time.June, core.TagSummer},
		{time.August, core.TagSummer},
		{time.September, core.TagAutumn},
		{time.November, core.TagAutumn},
		{time.December, core.TagWinter},
	}
	for _, tt := range tests {
		got := SeasonOf(time.Date(2026, tt.month, 10, 12, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("SeasonOf(%s) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestAugmenter_Seasonal(t *testing.T) {
	a, err := New(core.ContextConfig{InSeason: 2, AllSeason: 1, OffSeason: 0.5})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	july := time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tags core.Set
		want float64
	}{
		{"in season", core.NewSet("summer"), 2},
		{"in season beats off season", core.NewSet("summer", "winter"), 2},
		{"all season", core.NewSet("all_season"), 1},
		{"all season normalized", core.NewSet("All-Season"), 1},
		{"other season", core.NewSet("winter"), 0.5},
		{"explicit off season", core.NewSet("off_season"), 0.5},
		{"no season tags", core.NewSet("leisure"), 1},
		{"no tags", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Multiplier(tt.tags, july); got != tt.want {
				t.Errorf("Multiplier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAugmenter_Rules(t *testing.T) {
	a, err := New(core.DefaultConfig().Context)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Saturday evening in July
	saturdayEvening := time.Date(2026, time.July, 4, 20, 0, 0, 0, time.UTC)
	got := a.Multiplier(core.NewSet("summer", "leisure"), saturdayEvening)
	want := 2.0 * 1.2 * 1.15
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Multiplier() = %v, want %v", got, want)
	}

	// Monday morning, work item
	mondayMorning := time.Date(2026, time.July, 6, 8, 0, 0, 0, time.UTC)
	got = a.Multiplier(core.NewSet("work"), mondayMorning)
	if math.Abs(got-1.1) > 1e-9 {
		t.Errorf("Multiplier() = %v, want 1.1", got)
	}

	// no rule applies
	got = a.Multiplier(core.NewSet("work"), saturdayEvening)
	if got != 1 {
		t.Errorf("Multiplier() = %v, want 1", got)
	}
}

func TestAugmenter_Deterministic(t *testing.T) {
	a, err := New(core.DefaultConfig().Context)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	now := time.Date(2026, time.December, 19, 21, 30, 0, 0, time.UTC)
	tags := core.NewSet("winter", "leisure", "new")
	first := a.Multiplier(tags, now)
	for i := 0; i < 10; i++ {
		if got := a.Multiplier(tags, now); got != first {
			t.Fatalf("Multiplier() changed: %v vs %v", got, first)
		}
	}
	if first <= 0 {
		t.Errorf("multiplier must be positive, got %v", first)
	}
}

func TestNew_InvalidRule(t *testing.T) {
	cfg := core.DefaultConfig().Context
	cfg.Rules = append(cfg.Rules, core.ContextRule{Name: "broken", Expr: "hour >=", Multiplier: 2})
	if _, err := New(cfg); err == nil {
		t.Fatal("expected compile error")
	}
}
