// Package filter 在打分前剔除不可展示的候选：下架、本会话已展示、屏蔽名单。
package filter

import (
	"context"

	"github.com/rushteam/swipekit/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Preparer 是可选接口：FilterNode 在逐个判断前调用一次 Prepare，
// 用于按请求预取数据（例如从 Store 读取一次屏蔽名单），避免逐个物品读存储。
type Preparer interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) error
}

// ActiveFilter 过滤下架物品
type ActiveFilter struct{}

func (ActiveFilter) Name() string { return "filter.active" }

func (ActiveFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	return item == nil || !item.Meta.IsActive, nil
}

// ShownFilter 过滤本会话已展示过的物品（同一会话内绝不重复展示）
type ShownFilter struct{}

func (ShownFilter) Name() string { return "filter.shown" }

func (ShownFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.Session == nil {
		return false, nil
	}
	return rctx.Session.ShownItemIDs.Has(item.ID), nil
}

var (
	_ Filter = ActiveFilter{}
	_ Filter = ShownFilter{}
)
