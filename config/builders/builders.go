// Package builders 在 init 中把内置选品 Node 注册到 config 注册表。
// 每个 builder 以 core.DefaultConfig() 为基础，Node 配置中出现的键覆盖默认值。
package builders

import (
	"fmt"

	"github.com/rushteam/swipekit/augment"
	"github.com/rushteam/swipekit/config"
	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/explore"
	"github.com/rushteam/swipekit/filter"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/conv"
	"github.com/rushteam/swipekit/quality"
	"github.com/rushteam/swipekit/rank"
	"github.com/rushteam/swipekit/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rank.score", BuildScoreNode)
	config.Register("rerank.category_shift", BuildCategoryShiftNode)
	config.Register("rerank.explore", BuildExploreNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildFilterNode 支持的过滤器：active、shown、blocklist（item_ids）、expr（expr）。
// 未配置 filters 时使用 active + shown。
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return filter.NewFilterNode(filter.ActiveFilter{}, filter.ShownFilter{}), nil
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "active":
			filters = append(filters, filter.ActiveFilter{})
		case "shown":
			filters = append(filters, filter.ShownFilter{})
		case "blocklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			filters = append(filters, filter.NewBlocklistFilter(ids, nil, "", ""))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return filter.NewFilterNode(filters...), nil
}

// BuildScoreNode 构建打分节点。可覆盖：baseline、z、liked_weight、disliked_weight、
// brand_boost、category_boost、price_sensitivity、affinity_floor、
// in_season、all_season、off_season、rules（[{name, expr, multiplier}]）。
func BuildScoreNode(cfg map[string]any) (pipeline.Node, error) {
	def := core.DefaultConfig()

	q := def.Quality
	q.Baseline = conv.ConfigGetFloat64(cfg, "baseline", q.Baseline)
	q.Z = conv.ConfigGetFloat64(cfg, "z", q.Z)

	sel := def.Selection
	sel.LikedWeight = conv.ConfigGetFloat64(cfg, "liked_weight", sel.LikedWeight)
	sel.DislikedWeight = conv.ConfigGetFloat64(cfg, "disliked_weight", sel.DislikedWeight)
	sel.BrandBoost = conv.ConfigGetFloat64(cfg, "brand_boost", sel.BrandBoost)
	sel.CategoryBoost = conv.ConfigGetFloat64(cfg, "category_boost", sel.CategoryBoost)
	sel.PriceSensitivity = conv.ConfigGetFloat64(cfg, "price_sensitivity", sel.PriceSensitivity)
	sel.AffinityFloor = conv.ConfigGetFloat64(cfg, "affinity_floor", sel.AffinityFloor)

	ctxCfg := def.Context
	ctxCfg.InSeason = conv.ConfigGetFloat64(cfg, "in_season", ctxCfg.InSeason)
	ctxCfg.AllSeason = conv.ConfigGetFloat64(cfg, "all_season", ctxCfg.AllSeason)
	ctxCfg.OffSeason = conv.ConfigGetFloat64(cfg, "off_season", ctxCfg.OffSeason)
	if raw, ok := cfg["rules"].([]any); ok {
		ctxCfg.Rules = ctxCfg.Rules[:0:0]
		for _, r := range raw {
			rm, ok := r.(map[string]any)
			if !ok {
				continue
			}
			ctxCfg.Rules = append(ctxCfg.Rules, core.ContextRule{
				Name:       conv.ConfigGet(rm, "name", ""),
				Expr:       conv.ConfigGet(rm, "expr", ""),
				Multiplier: conv.ConfigGetFloat64(rm, "multiplier", 1),
			})
		}
	}
	aug, err := augment.New(ctxCfg)
	if err != nil {
		return nil, err
	}

	return &rank.ScoreNode{
		Quality:   quality.NewScorer(q),
		Augmenter: aug,
		Selection: sel,
	}, nil
}

func BuildCategoryShiftNode(cfg map[string]any) (pipeline.Node, error) {
	penalty := conv.ConfigGetFloat64(cfg, "penalty", core.DefaultConfig().Selection.CategoryShiftPenalty)
	if penalty < 0 || penalty > 1 {
		return nil, fmt.Errorf("penalty must be in [0,1], got %v", penalty)
	}
	return &rerank.CategoryShift{Penalty: penalty}, nil
}

// BuildExploreNode 可覆盖：epsilon_max、epsilon_min、decay_swipes、novel_tags、seed。
func BuildExploreNode(cfg map[string]any) (pipeline.Node, error) {
	ex := core.DefaultConfig().Exploration
	ex.EpsilonMax = conv.ConfigGetFloat64(cfg, "epsilon_max", ex.EpsilonMax)
	ex.EpsilonMin = conv.ConfigGetFloat64(cfg, "epsilon_min", ex.EpsilonMin)
	ex.DecaySwipes = conv.ConfigGetFloat64(cfg, "decay_swipes", ex.DecaySwipes)
	if tags := conv.SliceAnyToString(cfg["novel_tags"]); len(tags) > 0 {
		ex.NovelTags = tags
	}
	seed := conv.ConfigGetInt64(cfg, "seed", core.DefaultSeed)
	return &rerank.Explore{Controller: explore.NewController(ex, seed)}, nil
}

// BuildDiversityNode 可覆盖：max_per_category、max_per_brand、max_per_price_bucket、price_buckets。
func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	d := core.DefaultConfig().Diversity
	d.MaxPerCategory = conv.ConfigGetInt(cfg, "max_per_category", d.MaxPerCategory)
	d.MaxPerBrand = conv.ConfigGetInt(cfg, "max_per_brand", d.MaxPerBrand)
	d.MaxPerPriceBucket = conv.ConfigGetInt(cfg, "max_per_price_bucket", d.MaxPerPriceBucket)
	if _, ok := cfg["price_buckets"]; ok {
		d.PriceBuckets = conv.SliceAnyToFloat64(cfg["price_buckets"])
	}
	return rerank.NewDiversity(d), nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
