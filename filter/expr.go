package filter

import (
	"context"

	"github.com/rushteam/swipekit/augment"
	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pkg/dsl"
)

// ExprFilter 按 CEL 表达式过滤：表达式为真时剔除物品。
// 例如 `price > 500.0 && !("luxury" in tags)`。
//
// score 取物品当前分数。默认流水线中过滤在 rank.score 之前，此时 score 恒为 0；
// 只有在流水线配置里把过滤节点放到打分之后，score 条件才有意义。
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式并创建过滤器
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	vars := dsl.Vars{
		Tags:     item.Meta.Tags.Sorted(),
		Category: item.Meta.Category,
		Brand:    item.Meta.Brand,
		Price:    item.Meta.Price,
		Score:    item.Score,
	}
	if rctx != nil && !rctx.Now.IsZero() {
		vars.Hour = rctx.Now.Hour()
		vars.Weekday = int(rctx.Now.Weekday())
		vars.Month = int(rctx.Now.Month())
		vars.Season = augment.SeasonOf(rctx.Now)
	}
	return f.prg.Eval(vars)
}

var _ Filter = (*ExprFilter)(nil)
