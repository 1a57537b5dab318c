package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pkg/metrics"
)

// ErrEmptyUserID 表示缺少用户 ID
var ErrEmptyUserID = core.NewDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "session: empty user id")

// Tracker 是会话状态的唯一写者。
//
// 同一进程内同一用户的写入由按用户的互斥锁串行化；
// 跨进程的并发写由 StateStore 的版本校验兜底，冲突时返回 core.ErrStateConflict。
type Tracker struct {
	store      StateStore
	thresholds Thresholds
	idle       time.Duration
	maxRetries int
	logger     zerolog.Logger

	locks userLocks
}

// TrackerOption 配置 Tracker
type TrackerOption func(*Tracker)

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = logger.With().Str("component", "session").Logger()
	}
}

// NewTracker 创建会话追踪器
func NewTracker(store StateStore, cfg core.SessionConfig, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:      store,
		thresholds: ThresholdsFrom(cfg),
		idle:       cfg.IdleTimeout,
		maxRetries: cfg.MaxRetries,
		logger:     zerolog.Nop(),
		locks:      userLocks{m: make(map[string]*userLock)},
	}
	if t.maxRetries < 0 {
		t.maxRetries = 0
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Thresholds 返回当前阈值
func (t *Tracker) Thresholds() Thresholds {
	return t.thresholds
}

// Get 返回用户当前会话状态的快照；不存在或已空闲超时时返回新会话（不落库）。
func (t *Tracker) Get(ctx context.Context, userID string, now time.Time) (*core.SessionState, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	st, _, err := t.load(ctx, userID, now)
	return st, err
}

// RecordSwipe 记录一次滑动并返回迁移后的状态。
// 与其他进程的并发写冲突时返回 core.ErrStateConflict，调用方可重试。
func (t *Tracker) RecordSwipe(ctx context.Context, userID string, sw Swipe) (*core.SessionState, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if !sw.Decision.Valid() {
		return nil, core.ErrInvalidDecision
	}

	unlock := t.locks.lock(userID)
	defer unlock()

	cur, expected, err := t.load(ctx, userID, sw.At)
	if err != nil {
		return nil, err
	}
	next := Apply(cur, sw, t.thresholds)
	if err := t.save(ctx, next, expected, "swipe"); err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(cur.Status), string(next.Status))
	if cur.Status != next.Status {
		t.logger.Debug().
			Str("user_id", userID).
			Str("from", string(cur.Status)).
			Str("to", string(next.Status)).
			Int("consecutive_rejections", next.ConsecutiveRejections).
			Msg("session status changed")
	}
	return next, nil
}

// RecordServed 把返回给用户的物品计入已展示集合，并报告本次返回是否认领了休息建议。
// 认领在用户锁与版本校验之内完成，同一轮拒绝只有一次调用得到 true。
// 写冲突时在内部重试，最多 MaxRetries 次。
func (t *Tracker) RecordServed(ctx context.Context, userID string, itemIDs []string, now time.Time) (*core.SessionState, bool, error) {
	var claimed bool
	st, err := t.update(ctx, userID, now, "served", func(st *core.SessionState) *core.SessionState {
		var next *core.SessionState
		next, claimed = MarkServed(st, itemIDs, now)
		return next
	})
	if err != nil {
		return nil, false, err
	}
	return st, claimed, nil
}

// AcknowledgeBreak 用户确认休息建议，会话回到 Normal。
func (t *Tracker) AcknowledgeBreak(ctx context.Context, userID string, now time.Time) (*core.SessionState, error) {
	return t.update(ctx, userID, now, "ack_break", func(st *core.SessionState) *core.SessionState {
		return Acknowledge(st, now)
	})
}

// Reset 显式开启新会话，保留累计滑动数。
func (t *Tracker) Reset(ctx context.Context, userID string, now time.Time) (*core.SessionState, error) {
	return t.update(ctx, userID, now, "reset", func(st *core.SessionState) *core.SessionState {
		return Restart(st, now)
	})
}

func (t *Tracker) update(ctx context.Context, userID string, now time.Time, op string, fn func(*core.SessionState) *core.SessionState) (*core.SessionState, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	unlock := t.locks.lock(userID)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, expected, err := t.load(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		next := fn(cur)
		err = t.save(ctx, next, expected, op)
		if err == nil {
			metrics.RecordTransition(string(cur.Status), string(next.Status))
			return next, nil
		}
		if !core.IsStateConflict(err) {
			return nil, err
		}
		lastErr = err
		t.logger.Debug().Str("user_id", userID).Str("op", op).Int("attempt", attempt+1).Msg("session write conflict, retrying")
	}
	return nil, lastErr
}

// load 读取状态并处理空闲超时，返回状态与写回时应校验的版本
func (t *Tracker) load(ctx context.Context, userID string, now time.Time) (*core.SessionState, int64, error) {
	st, err := t.store.LoadState(ctx, userID)
	switch {
	case err == nil:
	case core.IsStoreNotFound(err):
		return core.NewSessionState(userID, now), 0, nil
	default:
		return nil, 0, err
	}

	expected := st.Version
	if Expired(st, t.idle, now) {
		t.logger.Debug().Str("user_id", userID).Time("last_activity", st.LastActivityAt).Msg("session idle timeout, starting new session")
		st = Restart(st, now)
	}
	return st, expected, nil
}

func (t *Tracker) save(ctx context.Context, next *core.SessionState, expected int64, op string) error {
	next.Version = expected + 1
	err := t.store.SaveState(ctx, next, expected)
	if core.IsStateConflict(err) {
		metrics.RecordConflict(op)
	}
	return err
}

// userLocks 是按用户的互斥锁表，锁在无人持有时回收
type userLocks struct {
	mu sync.Mutex
	m  map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(key string) func() {
	l.mu.Lock()
	ul, ok := l.m[key]
	if !ok {
		ul = &userLock{}
		l.m[key] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
