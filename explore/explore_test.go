package explore

import (
	"math"
	"testing"

	"github.com/rushteam/swipekit/core"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestController_Probability(t *testing.T) {
	c := NewController(core.DefaultConfig().Exploration, 1)

	if got := c.Probability(0); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("Probability(0) = %v, want 0.3", got)
	}

	prev := c.Probability(0)
	for n := 1; n <= 5000; n += 7 {
		eps := c.Probability(n)
		if eps > prev {
			t.Fatalf("Probability not monotone: ε(%d)=%v > %v", n, eps, prev)
		}
		if eps < 0.05 || eps > 0.3 {
			t.Fatalf("Probability(%d) = %v out of bounds", n, eps)
		}
		prev = eps
	}

	if got := c.Probability(100000); math.Abs(got-0.05) > 1e-6 {
		t.Errorf("Probability(large) = %v, want ~0.05", got)
	}
	if got := c.Probability(-3); got != c.Probability(0) {
		t.Errorf("negative swipes should clamp to zero")
	}
}

func TestController_ShouldExplore(t *testing.T) {
	low := NewController(core.DefaultConfig().Exploration, 1, WithRand(fixedRand(0.01)))
	if ok, _ := low.ShouldExplore(0); !ok {
		t.Error("draw below ε should explore")
	}

	high := NewController(core.DefaultConfig().Exploration, 1, WithRand(fixedRand(0.99)))
	if ok, eps := high.ShouldExplore(0); ok || math.Abs(eps-0.3) > 1e-12 {
		t.Errorf("ShouldExplore() = %v, %v; want false, 0.3", ok, eps)
	}
}

func TestController_SeededSequenceRepeats(t *testing.T) {
	a := NewController(core.DefaultConfig().Exploration, 7)
	b := NewController(core.DefaultConfig().Exploration, 7)
	for i := 0; i < 50; i++ {
		x, _ := a.ShouldExplore(i)
		y, _ := b.ShouldExplore(i)
		if x != y {
			t.Fatalf("seeded controllers diverged at %d", i)
		}
	}
}

func TestController_Slots(t *testing.T) {
	c := NewController(core.DefaultConfig().Exploration, 1)
	tests := []struct {
		eps   float64
		count int
		want  int
	}{
		{0.3, 10, 3},
		{0.3, 3, 1},
		{0.05, 10, 1},
		{0.3, 0, 0},
		{0, 10, 0},
		{1, 4, 4},
	}
	for _, tt := range tests {
		if got := c.Slots(tt.eps, tt.count); got != tt.want {
			t.Errorf("Slots(%v, %d) = %d, want %d", tt.eps, tt.count, got, tt.want)
		}
	}
}

func TestController_IsNovel(t *testing.T) {
	c := NewController(core.DefaultConfig().Exploration, 1)
	if !c.IsNovel(core.ItemMetadata{Tags: core.NewSet("Trending")}) {
		t.Error("trending item should be novel")
	}
	if c.IsNovel(core.ItemMetadata{Tags: core.NewSet("summer")}) {
		t.Error("plain item should not be novel")
	}
}
