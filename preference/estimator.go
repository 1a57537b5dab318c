// Package preference 从用户的交互历史推导时间衰减的偏好画像。
package preference

import (
	"math"
	"sort"
	"time"

	"github.com/rushteam/swipekit/core"
)

// Estimator 是偏好估计器，无状态、并发安全。
//
// 每个事件的贡献按指数衰减：weight = exp(-λ·age_days)，λ = ln2 / HalfLifeDays，
// 即权重每 HalfLifeDays 天减半。参考时间 now 由调用方传入，估计器从不读取墙钟，
// 因此同样的 (events, items, now) 总是得到逐位相同的画像。
type Estimator struct {
	cfg    core.PreferenceConfig
	lambda float64
}

// NewEstimator 创建偏好估计器，非法配置回退到默认值
func NewEstimator(cfg core.PreferenceConfig) *Estimator {
	def := core.DefaultConfig().Preference
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = def.HalfLifeDays
	}
	if cfg.MinPriceEvents <= 0 {
		cfg.MinPriceEvents = def.MinPriceEvents
	}
	if cfg.PriceHighQuantile <= 0 || cfg.PriceHighQuantile > 1 || cfg.PriceLowQuantile < 0 || cfg.PriceLowQuantile > cfg.PriceHighQuantile {
		cfg.PriceLowQuantile = def.PriceLowQuantile
		cfg.PriceHighQuantile = def.PriceHighQuantile
	}
	return &Estimator{
		cfg:    cfg,
		lambda: math.Ln2 / cfg.HalfLifeDays,
	}
}

// DecayWeight 返回事件在 now 时刻的衰减权重，未来时间的事件按 age=0 处理。
func (e *Estimator) DecayWeight(ts, now time.Time) float64 {
	ageDays := now.Sub(ts).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-e.lambda * ageDays)
}

type pricePoint struct {
	price  float64
	weight float64
}

// Estimate 推导偏好画像。
//
//   - accept 事件：衰减权重累加到物品每个标签的 LikedTagWeights
//   - reject 事件：累加到 DislikedTagWeights
//   - 价格带：accept 物品价格的加权 25~75 分位；accept 少于 MinPriceEvents 时不限价格
//   - 品牌/类目：accept 中衰减权重和达到阈值者进入偏好集合
//
// 引用未知物品的事件被跳过；空历史返回冷启动画像。
func (e *Estimator) Estimate(events []core.InteractionEvent, itemsByID map[string]core.ItemMetadata, now time.Time) core.PreferenceProfile {
	profile := core.UnconstrainedProfile()
	if len(events) == 0 {
		return profile
	}

	brandWeights := make(map[string]float64)
	categoryWeights := make(map[string]float64)
	prices := make([]pricePoint, 0, len(events))

	for _, ev := range events {
		item, ok := itemsByID[ev.ItemID]
		if !ok {
			continue
		}
		w := e.DecayWeight(ev.Timestamp, now)

		switch ev.Decision {
		case core.DecisionAccept:
			for tag := range item.Tags {
				profile.LikedTagWeights[core.NormalizeTag(tag)] += w
			}
			if item.Brand != "" {
				brandWeights[item.Brand] += w
			}
			if item.Category != "" {
				categoryWeights[item.Category] += w
			}
			prices = append(prices, pricePoint{price: item.Price, weight: w})
		case core.DecisionReject:
			for tag := range item.Tags {
				profile.DislikedTagWeights[core.NormalizeTag(tag)] += w
			}
		}
	}

	if len(prices) >= e.cfg.MinPriceEvents {
		profile.PriceRange = core.PriceRange{
			Min: weightedQuantile(prices, e.cfg.PriceLowQuantile),
			Max: weightedQuantile(prices, e.cfg.PriceHighQuantile),
		}
	}

	for brand, w := range brandWeights {
		if w >= e.cfg.BrandThreshold {
			profile.PreferredBrands.Add(brand)
		}
	}
	for category, w := range categoryWeights {
		if w >= e.cfg.CategoryThreshold {
			profile.PreferredCategories.Add(category)
		}
	}

	return profile
}

// weightedQuantile 返回累计权重首次达到 q·总权重 的价格。
// 同价格按出现顺序稳定排序，结果与输入顺序无关。
func weightedQuantile(points []pricePoint, q float64) float64 {
	sorted := make([]pricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].price != sorted[j].price {
			return sorted[i].price < sorted[j].price
		}
		return sorted[i].weight < sorted[j].weight
	})

	total := 0.0
	for _, p := range sorted {
		total += p.weight
	}
	if total <= 0 {
		return sorted[len(sorted)/2].price
	}

	target := q * total
	cum := 0.0
	for _, p := range sorted {
		cum += p.weight
		if cum >= target {
			return p.price
		}
	}
	return sorted[len(sorted)-1].price
}
