package filter

import (
	"context"
	"sync"

	"github.com/rushteam/swipekit/core"
)

// BlocklistFilter 是屏蔽名单过滤器。
//
//   - ItemIDs：全局静态名单（来自配置）
//   - Store + Key：全局动态名单，存储中为 JSON 字符串数组
//   - Store + UserKeyPrefix：按用户的名单，key 为 {UserKeyPrefix}:{UserID}
//
// 存储读取失败时只记录为不过滤，不中断请求。
type BlocklistFilter struct {
	ItemIDs       []string
	Store         BlocklistStore
	Key           string
	UserKeyPrefix string

	static core.Set
	once   sync.Once
}

// paramBlocklist 是 Prepare 在 RecommendContext.Params 中缓存动态名单的 key
const paramBlocklist = "filter.blocklist"

// BlocklistStore 是屏蔽名单存储接口。
type BlocklistStore interface {
	// GetBlocklist 获取 key 对应的物品 ID 列表，key 不存在时返回空列表
	GetBlocklist(ctx context.Context, key string) ([]string, error)
}

// NewBlocklistFilter 创建屏蔽名单过滤器，storeAdapter 可为 nil。
func NewBlocklistFilter(itemIDs []string, storeAdapter *StoreAdapter, key, userKeyPrefix string) *BlocklistFilter {
	var store BlocklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlocklistFilter{
		ItemIDs:       itemIDs,
		Store:         store,
		Key:           key,
		UserKeyPrefix: userKeyPrefix,
	}
}

func (f *BlocklistFilter) Name() string {
	return "filter.blocklist"
}

func (f *BlocklistFilter) staticSet() core.Set {
	f.once.Do(func() {
		f.static = core.NewSet(f.ItemIDs...)
	})
	return f.static
}

// Prepare 读取本次请求的动态名单
func (f *BlocklistFilter) Prepare(ctx context.Context, rctx *core.RecommendContext) error {
	if f.Store == nil || rctx == nil {
		return nil
	}
	blocked := core.NewSet()
	if f.Key != "" {
		if ids, err := f.Store.GetBlocklist(ctx, f.Key); err == nil {
			for _, id := range ids {
				blocked.Add(id)
			}
		}
	}
	if f.UserKeyPrefix != "" && rctx.UserID != "" {
		if ids, err := f.Store.GetBlocklist(ctx, f.UserKeyPrefix+":"+rctx.UserID); err == nil {
			for _, id := range ids {
				blocked.Add(id)
			}
		}
	}

	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	rctx.Params[paramBlocklist] = blocked
	return nil
}

func (f *BlocklistFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.staticSet().Has(item.ID) {
		return true, nil
	}

	if rctx == nil {
		return false, nil
	}
	blocked, _ := rctx.Params[paramBlocklist].(core.Set)
	return blocked.Has(item.ID), nil
}

var (
	_ Filter   = (*BlocklistFilter)(nil)
	_ Preparer = (*BlocklistFilter)(nil)
)
