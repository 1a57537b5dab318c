// Package rank 为候选打分：品质分 × 个性化亲和度 × 上下文乘数，冷启动时只用品质分。
package rank

import (
	"math"

	"github.com/rushteam/swipekit/core"
)

// Affinity 是某个画像下的亲和度打分器，每次请求按画像构建一次。
//
//	affinity = (1 + LikedWeight·liked)
//	         × max(floor, 1 − DislikedWeight·disliked)
//	         × (1 + BrandBoost)     品牌在偏好集合中
//	         × (1 + CategoryBoost)  类目在偏好集合中
//	         × exp(−PriceSensitivity · 价格相对偏离)
//
// liked / disliked 为物品各标签权重按画像最大权重归一后的均值，落在 [0,1]。
// 价格在区间外只做平滑惩罚，不硬性排除。结果不低于 AffinityFloor，恒为正。
type Affinity struct {
	profile     *core.PreferenceProfile
	cfg         core.SelectionConfig
	maxLiked    float64
	maxDisliked float64
}

// NewAffinity 按画像与参数构建打分器
func NewAffinity(profile *core.PreferenceProfile, cfg core.SelectionConfig) *Affinity {
	if cfg.AffinityFloor <= 0 {
		cfg.AffinityFloor = core.DefaultConfig().Selection.AffinityFloor
	}
	a := &Affinity{profile: profile, cfg: cfg}
	if profile != nil {
		a.maxLiked = maxWeight(profile.LikedTagWeights)
		a.maxDisliked = maxWeight(profile.DislikedTagWeights)
	}
	return a
}

// Score 返回物品的亲和度
func (a *Affinity) Score(meta core.ItemMetadata) float64 {
	if a.profile == nil {
		return 1
	}
	liked, disliked := a.tagShares(meta.Tags)

	s := (1 + a.cfg.LikedWeight*liked) * math.Max(a.cfg.AffinityFloor, 1-a.cfg.DislikedWeight*disliked)
	if meta.Brand != "" && a.profile.PreferredBrands.Has(meta.Brand) {
		s *= 1 + a.cfg.BrandBoost
	}
	if meta.Category != "" && a.profile.PreferredCategories.Has(meta.Category) {
		s *= 1 + a.cfg.CategoryBoost
	}
	s *= math.Exp(-a.cfg.PriceSensitivity * priceDeviation(meta.Price, a.profile.PriceRange))

	if math.IsNaN(s) || s < a.cfg.AffinityFloor {
		return a.cfg.AffinityFloor
	}
	return s
}

func (a *Affinity) tagShares(tags core.Set) (liked, disliked float64) {
	if len(tags) == 0 {
		return 0, 0
	}
	for raw := range tags {
		tag := core.NormalizeTag(raw)
		if a.maxLiked > 0 {
			liked += a.profile.LikedWeight(tag) / a.maxLiked
		}
		if a.maxDisliked > 0 {
			disliked += a.profile.DislikedWeight(tag) / a.maxDisliked
		}
	}
	n := float64(len(tags))
	return liked / n, disliked / n
}

// priceDeviation 返回价格偏离区间的相对距离，区间内为 0
func priceDeviation(price float64, r core.PriceRange) float64 {
	switch {
	case price < r.Min:
		return (r.Min - price) / math.Max(r.Min, 1)
	case price > r.Max:
		return (price - r.Max) / math.Max(r.Max, 1)
	default:
		return 0
	}
}

func maxWeight(m map[string]float64) float64 {
	best := 0.0
	for _, w := range m {
		if w > best {
			best = w
		}
	}
	return best
}
