// Package explore 控制探索/利用的平衡：新用户多探索，老用户逐步收敛到利用。
package explore

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rushteam/swipekit/core"
)

// Rand 是探索决策使用的随机源，测试可注入固定序列
type Rand interface {
	Float64() float64
}

// LockedRand 是并发安全的带种子随机源
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand 用固定种子创建随机源，同一种子得到同一序列
func NewLockedRand(seed int64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // 非安全用途
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Controller 是探索控制器。
//
//	ε(n) = ε_min + (ε_max − ε_min) · exp(−n / DecaySwipes)
//
// n 为用户累计滑动次数。ε 关于 n 单调不增，且始终落在 [ε_min, ε_max]。
type Controller struct {
	max, min  float64
	decay     float64
	novelTags core.Set
	rng       Rand
}

// Option 配置 Controller
type Option func(*Controller)

// WithRand 注入随机源
func WithRand(r Rand) Option {
	return func(c *Controller) {
		c.rng = r
	}
}

// NewController 创建探索控制器，非法配置回退到默认值
func NewController(cfg core.ExplorationConfig, seed int64, opts ...Option) *Controller {
	def := core.DefaultConfig().Exploration
	if cfg.EpsilonMax <= 0 || cfg.EpsilonMax > 1 {
		cfg.EpsilonMax = def.EpsilonMax
	}
	if cfg.EpsilonMin <= 0 || cfg.EpsilonMin > cfg.EpsilonMax {
		cfg.EpsilonMin = math.Min(def.EpsilonMin, cfg.EpsilonMax)
	}
	if cfg.DecaySwipes <= 0 {
		cfg.DecaySwipes = def.DecaySwipes
	}
	if len(cfg.NovelTags) == 0 {
		cfg.NovelTags = def.NovelTags
	}
	if seed == 0 {
		seed = core.DefaultSeed
	}

	c := &Controller{
		max:       cfg.EpsilonMax,
		min:       cfg.EpsilonMin,
		decay:     cfg.DecaySwipes,
		novelTags: core.NewSet(),
		rng:       NewLockedRand(seed),
	}
	for _, t := range cfg.NovelTags {
		c.novelTags.Add(core.NormalizeTag(t))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probability 返回累计滑动 totalSwipes 次时的探索概率 ε
func (c *Controller) Probability(totalSwipes int) float64 {
	n := float64(totalSwipes)
	if n < 0 {
		n = 0
	}
	eps := c.min + (c.max-c.min)*math.Exp(-n/c.decay)
	return math.Max(c.min, math.Min(c.max, eps))
}

// ShouldExplore 按概率 ε 决定本次是否探索，返回决策与 ε
func (c *Controller) ShouldExplore(totalSwipes int) (bool, float64) {
	eps := c.Probability(totalSwipes)
	return c.rng.Float64() < eps, eps
}

// Slots 返回一批 count 个物品中留给探索的位置数：ceil(ε·count)，且不超过 count
func (c *Controller) Slots(eps float64, count int) int {
	if count <= 0 || eps <= 0 {
		return 0
	}
	k := int(math.Ceil(eps * float64(count)))
	if k > count {
		k = count
	}
	return k
}

// IsNovel 判断物品是否属于探索池（带新品/趋势等标签）
func (c *Controller) IsNovel(meta core.ItemMetadata) bool {
	for raw := range meta.Tags {
		if c.novelTags.Has(core.NormalizeTag(raw)) {
			return true
		}
	}
	return false
}
