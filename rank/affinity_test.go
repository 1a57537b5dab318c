package rank

import (
	"math"
	"testing"

	"github.com/rushteam/swipekit/core"
)

func profileWith(liked, disliked map[string]float64) *core.PreferenceProfile {
	p := core.UnconstrainedProfile()
	for k, v := range liked {
		p.LikedTagWeights[k] = v
	}
	for k, v := range disliked {
		p.DislikedTagWeights[k] = v
	}
	return &p
}

func TestAffinity_Tags(t *testing.T) {
	cfg := core.DefaultConfig().Selection
	a := NewAffinity(profileWith(
		map[string]float64{"casual": 2, "summer": 1},
		map[string]float64{"formal": 1},
	), cfg)

	liked := a.Score(core.ItemMetadata{Tags: core.NewSet("casual")})
	neutral := a.Score(core.ItemMetadata{Tags: core.NewSet("sport")})
	disliked := a.Score(core.ItemMetadata{Tags: core.NewSet("formal")})

	if liked != 2 {
		t.Errorf("liked = %v, want 2", liked)
	}
	if neutral != 1 {
		t.Errorf("neutral = %v, want 1", neutral)
	}
	if want := 1 - cfg.DislikedWeight; math.Abs(disliked-want) > 1e-12 {
		t.Errorf("disliked = %v, want %v", disliked, want)
	}
	if !(liked > neutral && neutral > disliked) {
		t.Errorf("ordering broken: %v %v %v", liked, neutral, disliked)
	}
}

func TestAffinity_BoostsAndPrice(t *testing.T) {
	cfg := core.DefaultConfig().Selection
	p := profileWith(map[string]float64{"casual": 1}, nil)
	p.PreferredBrands.Add("acme")
	p.PreferredCategories.Add("dress")
	p.PriceRange = core.PriceRange{Min: 20, Max: 40}
	a := NewAffinity(p, cfg)

	base := a.Score(core.ItemMetadata{Price: 30})
	if base != 1 {
		t.Fatalf("base = %v, want 1", base)
	}
	boosted := a.Score(core.ItemMetadata{Price: 30, Brand: "acme", Category: "dress"})
	if want := (1 + cfg.BrandBoost) * (1 + cfg.CategoryBoost); math.Abs(boosted-want) > 1e-12 {
		t.Errorf("boosted = %v, want %v", boosted, want)
	}

	above := a.Score(core.ItemMetadata{Price: 80})
	if want := math.Exp(-cfg.PriceSensitivity * 1.0); math.Abs(above-want) > 1e-12 {
		t.Errorf("above range = %v, want %v", above, want)
	}
	far := a.Score(core.ItemMetadata{Price: 4000})
	if far != cfg.AffinityFloor {
		t.Errorf("far above range = %v, want floor %v", far, cfg.AffinityFloor)
	}
}

func TestAffinity_NilProfile(t *testing.T) {
	if got := NewAffinity(nil, core.SelectionConfig{}).Score(core.ItemMetadata{}); got != 1 {
		t.Errorf("Score() = %v, want 1", got)
	}
}
