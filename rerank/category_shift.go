package rerank

import (
	"context"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/utils"
)

// CategoryShift 在会话处于 CategoryShiftPending（或 BreakSuggested）时，
// 对最近被连续拒绝的类目乘以 Penalty 并重新排序。
type CategoryShift struct {
	// Penalty 乘性惩罚，取值 [0,1]
	Penalty float64
}

func (n *CategoryShift) Name() string {
	return "rerank.category_shift"
}

func (n *CategoryShift) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *CategoryShift) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil || !rctx.Session.CategoryShiftActive() {
		return items, nil
	}
	category := rctx.Session.LastDecisionCategory

	penalized := false
	for _, it := range items {
		if it == nil || it.Meta.Category != category {
			continue
		}
		it.Score *= n.Penalty
		it.PutLabel("category_shift", utils.Label{Value: category, Source: "rerank"})
		penalized = true
	}
	if penalized {
		core.SortItems(items)
		rctx.PutLabel("category_shift", utils.Label{Value: category, Source: "rerank"})
	}
	return items, nil
}

var _ pipeline.Node = (*CategoryShift)(nil)
