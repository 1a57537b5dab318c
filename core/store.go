package core

import (
	"context"
	"errors"
	"time"
)

// Store 是会话状态与屏蔽名单所用的 KV 抽象，实现位于 store 包
// （MemoryStore、RedisStore）。值为不透明字节，ttl 以秒计。
type Store interface {
	Name() string

	// Get 在 key 不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl ...int) error
	Delete(ctx context.Context, key string) error

	// BatchGet 的结果只包含存在的 key
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)
	Close() error
}

// CASStore 是支持比较并交换的 Store，用于会话状态的乐观并发控制。
type CASStore interface {
	Store

	// CompareAndSwap 仅当 key 的当前值等于 old 时写入 new。
	// old 为 nil 表示要求 key 当前不存在。
	// 当前值不匹配时返回 ErrStateConflict。
	CompareAndSwap(ctx context.Context, key string, old, new []byte, ttl ...int) error
}

// EventStore 是交互事件日志（外部协作方）的读写接口，只追加、不修改。
type EventStore interface {
	// AppendEvent 追加一条滑动事件
	AppendEvent(ctx context.Context, event InteractionEvent) error

	// GetEvents 返回用户在 since 之后（含）的事件，按时间升序。
	// since 为零值表示全部历史。
	GetEvents(ctx context.Context, userID string, since time.Time) ([]InteractionEvent, error)
}

// CatalogStore 是物品目录（外部协作方）的只读接口。
type CatalogStore interface {
	// ListActiveItems 返回当前所有上架物品
	ListActiveItems(ctx context.Context) ([]ItemMetadata, error)
}

var (
	ErrStoreNotFound     = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 报告 err 是否为 store 模块的 NOT_FOUND
func IsStoreNotFound(err error) bool { return errors.Is(err, ErrStoreNotFound) }

// IsStoreNotSupported 报告 err 是否为 store 模块的 NOT_SUPPORTED
func IsStoreNotSupported(err error) bool { return errors.Is(err, ErrStoreNotSupported) }
