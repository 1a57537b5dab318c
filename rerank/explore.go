package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/explore"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/metrics"
	"github.com/rushteam/swipekit/pkg/utils"
)

// Explore 是 ε-greedy 重排：每次选品抽一次签，命中时把 ceil(ε·count) 个位置
// 让给分数最高的新奇物品（带 new/trending 等标签），排在前 count−k 个利用位之后。
// 冷启动请求不探索：没有偏好时按品质分排序。
type Explore struct {
	Controller *explore.Controller
}

func (n *Explore) Name() string {
	return "rerank.explore"
}

func (n *Explore) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Explore) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Controller == nil || rctx.IsColdStart() {
		return items, nil
	}

	swipes := 0
	if rctx.Session != nil {
		swipes = rctx.Session.TotalLifetimeSwipes
	}
	ok, eps := n.Controller.ShouldExplore(swipes)
	rctx.PutLabel("epsilon", utils.Label{Value: strconv.FormatFloat(eps, 'f', 4, 64), Source: "explore"})
	if !ok {
		return items, nil
	}

	count := rctx.Count
	if count <= 0 || count > len(items) {
		count = len(items)
	}
	k := n.Controller.Slots(eps, count)

	// 分数最高的 k 个新奇物品
	picked := make(map[*core.Item]bool, k)
	for _, it := range items {
		if len(picked) == k {
			break
		}
		if it != nil && n.Controller.IsNovel(it.Meta) {
			picked[it] = true
		}
	}
	if len(picked) == 0 {
		return items, nil
	}

	exploit := count - len(picked)
	out := make([]*core.Item, 0, len(items))
	var novel, rest []*core.Item
	for _, it := range items {
		switch {
		case picked[it]:
			it.PutLabel("explore", utils.Label{Value: "true", Source: "explore"})
			novel = append(novel, it)
		case len(out) < exploit:
			out = append(out, it)
		default:
			rest = append(rest, it)
		}
	}
	out = append(out, novel...)
	out = append(out, rest...)

	rctx.PutLabel("explore", utils.Label{Value: strconv.Itoa(len(novel)), Source: "explore"})
	metrics.ExploreBatches.Inc()
	return out, nil
}

var _ pipeline.Node = (*Explore)(nil)
