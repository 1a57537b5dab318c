package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/metrics"
)

// Diversity 是单批多样性约束：按当前顺序贪心地放入物品，
// 若放入会使某个类目、品牌或价格段超过上限则跳过该物品。
// 被跳过的物品不再回补，上限只针对最终批次计算。
//
// 上限为 0 表示不限制；空类目、空品牌不参与计数。
type Diversity struct {
	MaxPerCategory    int
	MaxPerBrand       int
	MaxPerPriceBucket int
	// PriceBuckets 升序边界，n 个边界得到 n+1 个价格段
	PriceBuckets []float64
}

// NewDiversity 从配置创建
func NewDiversity(cfg core.DiversityConfig) *Diversity {
	buckets := append([]float64(nil), cfg.PriceBuckets...)
	sort.Float64s(buckets)
	return &Diversity{
		MaxPerCategory:    cfg.MaxPerCategory,
		MaxPerBrand:       cfg.MaxPerBrand,
		MaxPerPriceBucket: cfg.MaxPerPriceBucket,
		PriceBuckets:      buckets,
	}
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

// PriceBucket 返回价格所在的价格段序号
func (n *Diversity) PriceBucket(price float64) int {
	return sort.SearchFloat64s(n.PriceBuckets, price)
}

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := len(items)
	if rctx != nil && rctx.Count > 0 && rctx.Count < limit {
		limit = rctx.Count
	}

	categories := make(map[string]int)
	brands := make(map[string]int)
	buckets := make(map[int]int)
	out := make([]*core.Item, 0, limit)
	skipped := 0

	for _, it := range items {
		if len(out) == limit {
			break
		}
		if it == nil {
			continue
		}
		cat, brand, bucket := it.Meta.Category, it.Meta.Brand, n.PriceBucket(it.Meta.Price)

		if n.MaxPerCategory > 0 && cat != "" && categories[cat] >= n.MaxPerCategory {
			skipped++
			continue
		}
		if n.MaxPerBrand > 0 && brand != "" && brands[brand] >= n.MaxPerBrand {
			skipped++
			continue
		}
		if n.MaxPerPriceBucket > 0 && buckets[bucket] >= n.MaxPerPriceBucket {
			skipped++
			continue
		}

		if cat != "" {
			categories[cat]++
		}
		if brand != "" {
			brands[brand]++
		}
		buckets[bucket]++
		out = append(out, it)
	}

	metrics.RecordExcluded("diversity_cap", skipped)
	return out, nil
}

var _ pipeline.Node = (*Diversity)(nil)
