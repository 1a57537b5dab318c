package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/swipekit/core"
)

// RedisStore 是 Redis 上的 CASStore，多实例部署共享会话状态与屏蔽名单。
// 所有 key 都加上 prefix，CompareAndSwap 基于 WATCH/MULTI/EXEC。
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ core.CASStore = (*RedisStore)(nil)

// NewRedisStore 按配置建立连接，Ping 失败时关闭连接并返回错误
func NewRedisStore(cfg core.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	pingTimeout := cfg.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client, prefix: cfg.KeyPrefix}, nil
}

// NewRedisStoreFromClient 复用已有连接
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Client 返回底层连接，事件日志与之共享连接池
func (r *RedisStore) Client() *redis.Client { return r.client }

// Prefix 返回 key 前缀
func (r *RedisStore) Prefix() string { return r.prefix }

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) k(key string) string { return r.prefix + key }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, exists, err := r.read(ctx, r.client, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	return r.client.Set(ctx, r.k(key), value, ttlDuration(ttl)).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.k(key)).Err()
}

// BatchGet 用一次 MGET 读取，缺失的 key 不出现在结果中
func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.k(key)
	}
	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

// CompareAndSwap 在 WATCH 下比较当前值，EXEC 失败（并发修改）同样报告为冲突。
func (r *RedisStore) CompareAndSwap(ctx context.Context, key string, old, value []byte, ttl ...int) error {
	full := r.k(key)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, exists, err := r.read(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := casPrecondition(current, exists, old); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, value, ttlDuration(ttl))
			return nil
		})
		return err
	}, full)
	if errors.Is(err, redis.TxFailedErr) {
		return core.ErrStateConflict
	}
	return err
}

func (r *RedisStore) Close() error { return r.client.Close() }

// stringGetter 是 *redis.Client 与 *redis.Tx 共有的 GET
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) read(ctx context.Context, c stringGetter, key string) ([]byte, bool, error) {
	v, err := c.Get(ctx, r.k(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return v, true, nil
}

// casPrecondition 校验 CAS 的期望值：old 为 nil 要求 key 不存在，否则要求当前值等于 old。
func casPrecondition(current []byte, exists bool, old []byte) error {
	if old == nil {
		if exists {
			return core.ErrStateConflict
		}
		return nil
	}
	if !exists || !bytes.Equal(current, old) {
		return core.ErrStateConflict
	}
	return nil
}

func ttlDuration(ttl []int) time.Duration {
	if len(ttl) > 0 && ttl[0] > 0 {
		return time.Duration(ttl[0]) * time.Second
	}
	return 0
}
