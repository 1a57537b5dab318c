package rank

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/swipekit/augment"
	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/metrics"
	"github.com/rushteam/swipekit/pkg/utils"
	"github.com/rushteam/swipekit/quality"
)

// Feature keys written by ScoreNode
const (
	FeatureQuality  = "quality"
	FeatureAffinity = "affinity"
	FeatureContext  = "context"
)

// ScoreNode 为每个候选计算最终分并按分数降序排序。
//
//   - 冷启动画像：score = quality（热门兜底）
//   - 其他：score = quality × affinity × context
//
// 评分数据非法（core.ErrInvalidRating）的物品只剔除自身，不影响整批。
type ScoreNode struct {
	Quality   *quality.Scorer
	Augmenter *augment.Augmenter
	Selection core.SelectionConfig
	Logger    zerolog.Logger
}

func (n *ScoreNode) Name() string {
	return "rank.score"
}

func (n *ScoreNode) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *ScoreNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	coldStart := rctx.IsColdStart()
	var aff *Affinity
	if !coldStart {
		aff = NewAffinity(rctx.Profile, n.Selection)
	}

	out := make([]*core.Item, 0, len(items))
	excluded := 0
	for _, item := range items {
		if item == nil {
			continue
		}
		q, err := n.Quality.ScoreItem(item.Meta)
		if err != nil {
			excluded++
			n.Logger.Warn().Err(err).
				Str("item_id", item.ID).
				Int("rating_count", item.Meta.RatingCount).
				Float64("rating_average", item.Meta.RatingAverage).
				Msg("item excluded from scoring")
			continue
		}
		item.SetFeature(FeatureQuality, q)

		if coldStart {
			item.Score = q
			item.PutLabel("rank", utils.Label{Value: "popularity", Source: "rank"})
			out = append(out, item)
			continue
		}

		a := aff.Score(item.Meta)
		c := 1.0
		if n.Augmenter != nil {
			c = n.Augmenter.MultiplierFor(item.Meta, rctx.Now)
		}
		item.SetFeature(FeatureAffinity, a)
		item.SetFeature(FeatureContext, c)
		item.Score = q * a * c
		item.PutLabel("rank", utils.Label{Value: "personalized", Source: "rank"})
		out = append(out, item)
	}

	metrics.RecordExcluded("invalid_rating", excluded)
	core.SortItems(out)
	return out, nil
}

var _ pipeline.Node = (*ScoreNode)(nil)
