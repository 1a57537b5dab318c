package rerank

import (
	"context"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pipeline"
)

// TopNNode 是 Top-N 截断节点，放在 Pipeline 末尾。
// 截断数量取 N 与请求 Count 中较小的正值；两者都 <= 0 时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil && rctx.Count > 0 && (limit <= 0 || rctx.Count < limit) {
		limit = rctx.Count
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}

var _ pipeline.Node = (*TopNNode)(nil)
