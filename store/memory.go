package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/rushteam/swipekit/core"
)

// MemoryStore 是进程内的 CASStore，供 memory 后端与测试使用。
// 过期的 key 在读取时即视为不存在；后台 sweeper 周期性回收其内存。
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]record
	now     func() time.Time

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

type record struct {
	value    []byte
	expireAt time.Time // 零值表示不过期
}

func (r record) liveAt(t time.Time) bool {
	return r.expireAt.IsZero() || !t.After(r.expireAt)
}

var _ core.CASStore = (*MemoryStore)(nil)

// MemoryOption 配置 MemoryStore
type MemoryOption func(*MemoryStore)

// WithMemoryClock 替换时钟，测试中用于推进 TTL
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

// WithSweepInterval 设置后台回收间隔，<=0 关闭回收协程
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *MemoryStore) { m.sweepEvery = d }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		records:    make(map[string]record),
		now:        time.Now,
		sweepEvery: 30 * time.Second,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sweepEvery > 0 {
		go m.sweepLoop()
	}
	return m
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) lookup(key string) ([]byte, bool) {
	r, ok := m.records[key]
	if !ok || !r.liveAt(m.now()) {
		return nil, false
	}
	return r.value, true
}

func (m *MemoryStore) put(key string, value []byte, ttl []int) {
	r := record{value: bytes.Clone(value)}
	if len(ttl) > 0 && ttl[0] > 0 {
		r.expireAt = m.now().Add(time.Duration(ttl[0]) * time.Second)
	}
	m.records[key] = r
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.lookup(key); ok {
		return bytes.Clone(v), nil
	}
	return nil, core.ErrStoreNotFound
}

// Set 写入 key，ttl 为可选的过期秒数
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	m.put(key, value, ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.records, key)
	m.mu.Unlock()
	return nil
}

// BatchGet 只返回存在且未过期的 key
func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.lookup(k); ok {
			out[k] = bytes.Clone(v)
		}
	}
	return out, nil
}

// CompareAndSwap 在写锁内完成比较与写入。已过期的 key 按不存在处理。
func (m *MemoryStore) CompareAndSwap(_ context.Context, key string, old, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.lookup(key)
	if err := casPrecondition(current, exists, old); err != nil {
		return err
	}
	m.put(key, value, ttl)
	return nil
}

// Len 返回未过期的 key 数量
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	now := m.now()
	for _, r := range m.records {
		if r.liveAt(now) {
			n++
		}
	}
	return n
}

// Sweep 立即删除所有已过期的 key，返回删除数量
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for k, r := range m.records {
		if !r.liveAt(now) {
			delete(m.records, k)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
