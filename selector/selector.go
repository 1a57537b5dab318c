// Package selector 编排一次选品：过滤、打分、类目切换、探索、多样性、截断。
package selector

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/swipekit/augment"
	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/explore"
	"github.com/rushteam/swipekit/filter"
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/pkg/utils"
	"github.com/rushteam/swipekit/quality"
	"github.com/rushteam/swipekit/rank"
	"github.com/rushteam/swipekit/rerank"
)

// Request 是一次选品的全部输入，均已在内存中就绪
type Request struct {
	UserID  string
	Count   int
	Items   []core.ItemMetadata
	Profile *core.PreferenceProfile
	Session *core.SessionState
	Now     time.Time
}

// Result 是选品结果
type Result struct {
	// Items 有序物品 ID，长度不超过 Count
	Items []string
	// SuggestBreak 读取会话时休息建议待下发；是否真正下发以 session.Tracker.RecordServed 的认领结果为准
	SuggestBreak bool
	// Scored 与 Items 对应的候选，带分项特征与标签，便于解释
	Scored []*core.Item
	// Labels 请求级标签（冷启动、探索、类目切换等）
	Labels map[string]string
}

// Selector 是选品编排器。无状态（探索随机源除外），可并发调用。
type Selector struct {
	pipeline *pipeline.Pipeline
	logger   zerolog.Logger
}

// Option 配置 Selector
type Option func(*options)

type options struct {
	pipeline  *pipeline.Pipeline
	logger    zerolog.Logger
	rng       explore.Rand
	blocklist *filter.StoreAdapter
}

// WithPipeline 使用自定义 Node 链（例如从 YAML 构建）替代默认链
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(o *options) { o.pipeline = p }
}

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRand 注入探索随机源
func WithRand(r explore.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithBlocklistStore 启用存储中的全局/按用户屏蔽名单
func WithBlocklistStore(s core.Store) Option {
	return func(o *options) { o.blocklist = filter.NewStoreAdapter(s) }
}

// BlocklistKey / UserBlocklistPrefix 是屏蔽名单在 KV 存储中的 key
const (
	BlocklistKey        = "blocklist"
	UserBlocklistPrefix = "blocklist:user"
)

// New 创建 Selector；未指定 Pipeline 时按配置组装默认链。
func New(cfg core.Config, opts ...Option) (*Selector, error) {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.With().Str("component", "selector").Logger()

	p := o.pipeline
	if p == nil {
		var err error
		p, err = DefaultPipeline(cfg, o.rng, o.blocklist, logger)
		if err != nil {
			return nil, err
		}
	}
	p.Logger = logger
	return &Selector{pipeline: p, logger: logger}, nil
}

// DefaultPipeline 按配置组装默认 Node 链
func DefaultPipeline(cfg core.Config, rng explore.Rand, blocklist *filter.StoreAdapter, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	aug, err := augment.New(cfg.Context, augment.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	var exploreOpts []explore.Option
	if rng != nil {
		exploreOpts = append(exploreOpts, explore.WithRand(rng))
	}

	block := filter.NewBlocklistFilter(cfg.Selection.BlockedItems, blocklist, "", "")
	if blocklist != nil {
		block.Key = BlocklistKey
		block.UserKeyPrefix = UserBlocklistPrefix
	}

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			filter.NewFilterNode(filter.ActiveFilter{}, filter.ShownFilter{}, block),
			&rank.ScoreNode{
				Quality:   quality.NewScorer(cfg.Quality),
				Augmenter: aug,
				Selection: cfg.Selection,
				Logger:    logger,
			},
			&rerank.CategoryShift{Penalty: cfg.Selection.CategoryShiftPenalty},
			&rerank.Explore{Controller: explore.NewController(cfg.Exploration, cfg.Seed, exploreOpts...)},
			rerank.NewDiversity(cfg.Diversity),
			&rerank.TopNNode{},
		},
	}, nil
}

// Select 执行一次选品。过滤后没有候选时返回空结果而不是错误。
func (s *Selector) Select(ctx context.Context, req Request) (*Result, error) {
	res := &Result{
		Items:        []string{},
		SuggestBreak: req.Session.BreakPending(),
		Labels:       map[string]string{},
	}
	if req.Count <= 0 || len(req.Items) == 0 {
		return res, nil
	}

	rctx := &core.RecommendContext{
		UserID:  req.UserID,
		Count:   req.Count,
		Now:     req.Now,
		Profile: req.Profile,
		Session: req.Session,
		Params:  map[string]any{},
	}
	if rctx.IsColdStart() {
		rctx.PutLabel("cold_start", utils.Label{Value: "true", Source: "selector"})
	}

	candidates := make([]*core.Item, 0, len(req.Items))
	for _, meta := range req.Items {
		candidates = append(candidates, core.NewItem(meta))
	}

	out, err := s.pipeline.Run(ctx, rctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(out) > req.Count {
		out = out[:req.Count]
	}

	res.Scored = out
	for _, it := range out {
		res.Items = append(res.Items, it.ID)
	}
	for k, lbl := range rctx.Labels {
		res.Labels[k] = lbl.Value
	}
	return res, nil
}
