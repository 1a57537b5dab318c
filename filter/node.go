package filter

import (
	"context"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/metrics"
	"github.com/rushteam/swipekit/pkg/utils"
)

// LabelFiltered 是被剔除物品上的标签名，Source 为命中的过滤器
const LabelFiltered = "filtered"

// FilterNode 依次应用 Filters，命中任一过滤器的物品被剔除。
// 过滤器出错时放行该物品，并计一次降级。
type FilterNode struct {
	Filters []Filter
}

// NewFilterNode 创建过滤 Node
func NewFilterNode(filters ...Filter) *FilterNode {
	return &FilterNode{Filters: filters}
}

func (n *FilterNode) Name() string { return "filter.node" }

func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *FilterNode) Process(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}
	for _, f := range n.Filters {
		if p, ok := f.(Preparer); ok {
			if err := p.Prepare(ctx, rctx); err != nil {
				return nil, err
			}
		}
	}

	kept := items[:0:0]
	excluded := map[string]int{}
	failed := map[string]bool{}
	for _, item := range items {
		if item == nil {
			continue
		}
		by := n.match(ctx, rctx, item, failed)
		if by == "" {
			kept = append(kept, item)
			continue
		}
		excluded[by]++
		item.PutLabel(LabelFiltered, utils.Label{Value: "true", Source: by})
	}

	for by, count := range excluded {
		metrics.RecordExcluded(by, count)
	}
	for name := range failed {
		metrics.RecordDegraded(name)
	}
	return kept, nil
}

// match 返回第一个命中的过滤器名，未命中返回空串
func (n *FilterNode) match(ctx context.Context, rctx *core.RecommendContext, item *core.Item, failed map[string]bool) string {
	for _, f := range n.Filters {
		hit, err := f.ShouldFilter(ctx, rctx, item)
		if err != nil {
			failed[f.Name()] = true
			continue
		}
		if hit {
			return f.Name()
		}
	}
	return ""
}

var _ pipeline.Node = (*FilterNode)(nil)
