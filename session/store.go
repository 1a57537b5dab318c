package session

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/swipekit/core"
)

// StateStore 持久化会话状态，写入带版本校验（乐观并发）。
type StateStore interface {
	// LoadState 读取用户状态，不存在时返回 core.ErrStoreNotFound
	LoadState(ctx context.Context, userID string) (*core.SessionState, error)

	// SaveState 仅当存储中的版本等于 expectedVersion 时写入 st，
	// 否则返回 core.ErrStateConflict。expectedVersion 为 0 表示状态此前不存在。
	SaveState(ctx context.Context, st *core.SessionState, expectedVersion int64) error
}

// KeyPrefix 是会话状态在 KV 存储中的 key 前缀；命名空间前缀（如 Redis 的 key_prefix）由存储自身追加
const KeyPrefix = "session:"

// KVStateStore 把会话状态以 JSON 存到任意支持 CAS 的 KV 存储（内存、Redis）。
type KVStateStore struct {
	kv  core.CASStore
	ttl int
}

var _ StateStore = (*KVStateStore)(nil)

// NewKVStateStore 创建 KV 状态存储，ttl 为秒，0 表示不过期
func NewKVStateStore(kv core.CASStore, ttl int) *KVStateStore {
	return &KVStateStore{kv: kv, ttl: ttl}
}

func stateKey(userID string) string {
	return KeyPrefix + userID
}

func (s *KVStateStore) LoadState(ctx context.Context, userID string) (*core.SessionState, error) {
	raw, err := s.kv.Get(ctx, stateKey(userID))
	if err != nil {
		return nil, err
	}
	return decodeState(raw)
}

func (s *KVStateStore) SaveState(ctx context.Context, st *core.SessionState, expectedVersion int64) error {
	key := stateKey(st.UserID)

	var old []byte
	current, err := s.kv.Get(ctx, key)
	switch {
	case err == nil:
		prev, derr := decodeState(current)
		if derr != nil {
			return derr
		}
		if prev.Version != expectedVersion {
			return core.ErrStateConflict
		}
		old = current
	case core.IsStoreNotFound(err):
		if expectedVersion != 0 {
			return core.ErrStateConflict
		}
	default:
		return err
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.kv.CompareAndSwap(ctx, key, old, data, s.ttl)
}

func decodeState(raw []byte) (*core.SessionState, error) {
	var st core.SessionState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, core.NewDomainError(core.ModuleSession, core.ErrorCodeInternalError, "session: corrupt state").Wrap(err)
	}
	if st.ShownItemIDs == nil {
		st.ShownItemIDs = core.NewSet()
	}
	return &st, nil
}
