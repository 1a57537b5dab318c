package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/swipekit/core"
)

// newEventID 为缺少 ID 的事件生成 ULID（按时间有序）
func newEventID(ev core.InteractionEvent) string {
	if ev.ID != "" {
		return ev.ID
	}
	return ulid.Make().String()
}

func validateEvent(ev core.InteractionEvent) error {
	if ev.UserID == "" || ev.ItemID == "" {
		return core.NewDomainError(core.ModuleEvents, core.ErrorCodeInvalidInput, "events: user id and item id are required")
	}
	if !ev.Decision.Valid() {
		return core.ErrInvalidDecision
	}
	return nil
}

// sortEvents 按时间升序，同一时刻按 ID 排序
func sortEvents(events []core.InteractionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID < events[j].ID
	})
}

// MemoryEventStore 是内存实现的事件日志，只追加。
type MemoryEventStore struct {
	mu     sync.RWMutex
	byUser map[string][]core.InteractionEvent
}

var _ core.EventStore = (*MemoryEventStore)(nil)

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{byUser: make(map[string][]core.InteractionEvent)}
}

func (m *MemoryEventStore) AppendEvent(ctx context.Context, ev core.InteractionEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	ev.ID = newEventID(ev)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[ev.UserID] = append(m.byUser[ev.UserID], ev)
	return nil
}

func (m *MemoryEventStore) GetEvents(ctx context.Context, userID string, since time.Time) ([]core.InteractionEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.byUser[userID]
	out := make([]core.InteractionEvent, 0, len(src))
	for _, ev := range src {
		if !since.IsZero() && ev.Timestamp.Before(since) {
			continue
		}
		out = append(out, ev)
	}
	sortEvents(out)
	return out, nil
}

// RedisEventStore 把事件存为按用户的有序集合，score 为事件时间（毫秒）。
type RedisEventStore struct {
	client *redis.Client
	prefix string
	// maxEvents 每个用户保留的最大事件数，0 表示不裁剪
	maxEvents int64
}

var _ core.EventStore = (*RedisEventStore)(nil)

// NewRedisEventStore 创建 Redis 事件日志，key 形如 <prefix>events:<user>
func NewRedisEventStore(client *redis.Client, prefix string, maxEvents int64) *RedisEventStore {
	return &RedisEventStore{client: client, prefix: prefix + "events:", maxEvents: maxEvents}
}

func (r *RedisEventStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisEventStore) AppendEvent(ctx context.Context, ev core.InteractionEvent) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	ev.ID = newEventID(ev)

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	key := r.key(ev.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(ev.Timestamp.UnixMilli()), Member: data})
		if r.maxEvents > 0 {
			pipe.ZRemRangeByRank(ctx, key, 0, -r.maxEvents-1)
		}
		return nil
	})
	return err
}

func (r *RedisEventStore) GetEvents(ctx context.Context, userID string, since time.Time) ([]core.InteractionEvent, error) {
	lo := "-inf"
	if !since.IsZero() {
		lo = strconv.FormatInt(since.UnixMilli(), 10)
	}
	members, err := r.client.ZRangeByScore(ctx, r.key(userID), &redis.ZRangeBy{Min: lo, Max: "+inf"}).Result()
	if err != nil {
		return nil, err
	}

	out := make([]core.InteractionEvent, 0, len(members))
	for _, m := range members {
		var ev core.InteractionEvent
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	sortEvents(out)
	return out, nil
}
