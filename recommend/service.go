// Package recommend 是引擎对外的两个入口：取下一批推荐、记录一次滑动。
//
// 它负责从协作方（目录、事件日志、会话存储）取数，把内存中的快照交给
// preference / selector 做纯计算，并把结果写回会话状态。
package recommend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/explore"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/metrics"
	"github.com/rushteam/swipekit/preference"
	"github.com/rushteam/swipekit/selector"
	"github.com/rushteam/swipekit/session"
)

// ErrEmptyItemID 表示滑动缺少物品 ID
var ErrEmptyItemID = core.NewDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "session: empty item id")

// Recommendations 是 GetRecommendations 的返回值
type Recommendations struct {
	Items        []string `json:"items"`
	SuggestBreak bool     `json:"suggest_break"`

	// Scored 与 Items 对应的候选，带分项特征，用于 explain
	Scored []*core.Item `json:"-"`
}

// Service 编排一次推荐与一次滑动。除会话写入外均为只读计算，可并发调用。
type Service struct {
	cfg       core.Config
	catalog   core.CatalogStore
	events    core.EventStore
	tracker   *session.Tracker
	estimator *preference.Estimator
	selector  *selector.Selector
	vocab     *core.TagVocabulary
	logger    zerolog.Logger
	now       func() time.Time

	snapshot atomic.Pointer[catalogSnapshot]
}

// catalogSnapshot 是最近一次读取并规范化后的目录
type catalogSnapshot struct {
	items []core.ItemMetadata
	byID  map[string]core.ItemMetadata
}

// Option 配置 Service
type Option func(*serviceOptions)

type serviceOptions struct {
	logger    zerolog.Logger
	now       func() time.Time
	pipeline  *pipeline.Pipeline
	rng       explore.Rand
	blocklist core.Store
}

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) Option {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// WithPipeline 使用自定义选品 Node 链
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(o *serviceOptions) { o.pipeline = p }
}

// WithRand 注入探索随机源
func WithRand(r explore.Rand) Option {
	return func(o *serviceOptions) { o.rng = r }
}

// WithBlocklistStore 启用存储中的屏蔽名单
func WithBlocklistStore(s core.Store) Option {
	return func(o *serviceOptions) { o.blocklist = s }
}

// NewService 创建推荐服务
func NewService(cfg core.Config, catalog core.CatalogStore, events core.EventStore, states session.StateStore, opts ...Option) (*Service, error) {
	o := &serviceOptions{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if catalog == nil || events == nil || states == nil {
		return nil, fmt.Errorf("recommend: catalog, events and state store are required")
	}

	selOpts := []selector.Option{selector.WithLogger(o.logger)}
	if o.pipeline != nil {
		selOpts = append(selOpts, selector.WithPipeline(o.pipeline))
	}
	if o.rng != nil {
		selOpts = append(selOpts, selector.WithRand(o.rng))
	}
	if o.blocklist != nil {
		selOpts = append(selOpts, selector.WithBlocklistStore(o.blocklist))
	}
	sel, err := selector.New(cfg, selOpts...)
	if err != nil {
		return nil, fmt.Errorf("recommend: build selector: %w", err)
	}

	return &Service{
		cfg:       cfg,
		catalog:   catalog,
		events:    events,
		tracker:   session.NewTracker(states, cfg.Session, session.WithLogger(o.logger)),
		estimator: preference.NewEstimator(cfg.Preference),
		selector:  sel,
		vocab:     core.NewTagVocabulary(cfg.ExtraTags...),
		logger:    o.logger.With().Str("component", "recommend").Logger(),
		now:       o.now,
	}, nil
}

// Tracker 返回会话追踪器
func (s *Service) Tracker() *session.Tracker {
	return s.tracker
}

// GetRecommendations 返回用户的下一批物品（有序，不超过 count 个）与是否建议休息。
//
// 目录读取失败返回 core.ErrCatalogUnavailable；事件或会话读取失败降级为
// 冷启动 / 新会话并记录告警，不中断请求。
func (s *Service) GetRecommendations(ctx context.Context, userID string, count int) (out *Recommendations, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if out != nil {
			n = len(out.Items)
		}
		metrics.RecordRecommend(time.Since(start), n, err)
	}()

	if userID == "" {
		return nil, session.ErrEmptyUserID
	}
	now := s.now()
	logger := s.logger.With().Str("user_id", userID).Logger()

	var (
		items  []core.ItemMetadata
		events []core.InteractionEvent
		state  *core.SessionState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.catalog.ListActiveItems(gctx)
		if err != nil {
			return core.ErrCatalogUnavailable.Wrap(err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = s.events.GetEvents(gctx, userID, s.historySince(now))
		if err != nil && gctx.Err() == nil {
			logger.Warn().Err(err).Msg("event history unavailable, falling back to cold start")
			metrics.RecordDegraded("events")
			events = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		state, err = s.tracker.Get(gctx, userID, now)
		if err != nil && gctx.Err() == nil {
			logger.Warn().Err(err).Msg("session state unavailable, using a fresh session")
			metrics.RecordDegraded("session")
			state = core.NewSessionState(userID, now)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("catalog fetch failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := s.storeSnapshot(items)
	profile := s.estimator.Estimate(events, snap.byID, now)
	if profile.IsColdStart() {
		metrics.RecordDegraded("cold_start")
	}

	res, err := s.selector.Select(ctx, selector.Request{
		UserID:  userID,
		Count:   count,
		Items:   snap.items,
		Profile: &profile,
		Session: state,
		Now:     now,
	})
	if err != nil {
		logger.Error().Err(err).Msg("selection failed")
		return nil, err
	}

	// 选择阶段读到的 BreakPending 可能已被并发请求认领，以锁内认领结果为准。
	suggestBreak := false
	if len(res.Items) > 0 || res.SuggestBreak {
		_, claimed, err := s.tracker.RecordServed(ctx, userID, res.Items, now)
		if err != nil {
			logger.Warn().Err(err).Int("served", len(res.Items)).Msg("failed to record served items")
		}
		suggestBreak = claimed
	}
	if suggestBreak {
		metrics.BreakSuggestions.Inc()
	}

	logger.Debug().
		Int("count", count).
		Int("returned", len(res.Items)).
		Bool("suggest_break", suggestBreak).
		Bool("cold_start", profile.IsColdStart()).
		Msg("recommendations served")

	return &Recommendations{Items: res.Items, SuggestBreak: suggestBreak, Scored: res.Scored}, nil
}

// RecordSwipe 记录一次滑动：先推进会话状态，再把事件追加到事件日志。
//
// 会话写冲突返回 core.ErrStateConflict，调用方应重试。
// 状态已写入但事件追加失败时，返回新状态与 core.ErrEventsUnavailable。
func (s *Service) RecordSwipe(ctx context.Context, userID, itemID string, decision core.Decision, ts time.Time) (*core.SessionState, error) {
	if userID == "" {
		return nil, session.ErrEmptyUserID
	}
	if itemID == "" {
		return nil, ErrEmptyItemID
	}
	if !decision.Valid() {
		return nil, core.ErrInvalidDecision
	}
	if ts.IsZero() {
		ts = s.now()
	}
	logger := s.logger.With().Str("user_id", userID).Str("item_id", itemID).Logger()

	state, err := s.tracker.RecordSwipe(ctx, userID, session.Swipe{
		ItemID:   itemID,
		Category: s.categoryOf(ctx, itemID),
		Decision: decision,
		At:       ts,
	})
	if err != nil {
		if core.IsStateConflict(err) {
			logger.Info().Msg("swipe rejected by concurrent session write")
		}
		return nil, err
	}
	metrics.RecordSwipe(string(decision))

	ev := core.InteractionEvent{UserID: userID, ItemID: itemID, Decision: decision, Timestamp: ts}
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		logger.Error().Err(err).Msg("failed to append interaction event")
		return state, core.ErrEventsUnavailable.Wrap(err)
	}
	return state, nil
}

// AcknowledgeBreak 用户确认休息建议
func (s *Service) AcknowledgeBreak(ctx context.Context, userID string) (*core.SessionState, error) {
	return s.tracker.AcknowledgeBreak(ctx, userID, s.now())
}

// ResetSession 显式开启新会话（例如会话超时由调用方判定）
func (s *Service) ResetSession(ctx context.Context, userID string) (*core.SessionState, error) {
	return s.tracker.Reset(ctx, userID, s.now())
}

func (s *Service) historySince(now time.Time) time.Time {
	if s.cfg.HistoryWindow <= 0 {
		return time.Time{}
	}
	return now.Add(-s.cfg.HistoryWindow)
}

// storeSnapshot 规范化目录标签并替换快照。未登记的标签保留用于亲和度，只告警并计数。
func (s *Service) storeSnapshot(items []core.ItemMetadata) *catalogSnapshot {
	snap := &catalogSnapshot{
		items: make([]core.ItemMetadata, 0, len(items)),
		byID:  make(map[string]core.ItemMetadata, len(items)),
	}
	for _, it := range items {
		tags, unknown := s.vocab.Normalize(it.Tags)
		if len(unknown) > 0 {
			s.logger.Warn().Str("item_id", it.ItemID).Strs("tags", unknown).Msg("catalog tags outside vocabulary")
			metrics.UnknownTags.Add(float64(len(unknown)))
		}
		it.Tags = tags
		snap.items = append(snap.items, it)
		snap.byID[it.ItemID] = it
	}
	s.snapshot.Store(snap)
	return snap
}

// categoryOf 查找物品类目：优先用快照，未命中时重新读取目录；读取失败时返回空类目
func (s *Service) categoryOf(ctx context.Context, itemID string) string {
	if snap := s.snapshot.Load(); snap != nil {
		if it, ok := snap.byID[itemID]; ok {
			return it.Category
		}
	}
	items, err := s.catalog.ListActiveItems(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("catalog unavailable, swipe recorded without category")
		return ""
	}
	return s.storeSnapshot(items).byID[itemID].Category
}
