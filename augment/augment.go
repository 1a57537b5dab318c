// Package augment 根据请求时刻（季节、时段、星期）给物品打上下文乘数。
package augment

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/swipekit/core"
	"github.com/rushteam/swipekit/pkg/dsl"
)

// SeasonOf 返回北半球日历季节：3-5 春、6-8 夏、9-11 秋、12-2 冬。
func SeasonOf(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return core.TagSpring
	case time.June, time.July, time.August:
		return core.TagSummer
	case time.September, time.October, time.November:
		return core.TagAutumn
	default:
		return core.TagWinter
	}
}

type rule struct {
	name       string
	multiplier float64
	prg        *dsl.Program
}

// Augmenter 计算上下文乘数，纯函数：只读取传入的 now，不读墙钟。
//
//	季节部分（互斥，按优先级）：
//	  带当前季节标签                  -> InSeason（默认 2.0）
//	  带 all_season                   -> AllSeason（默认 1.0）
//	  带其他季节标签或 off_season     -> OffSeason（默认 0.5）
//	  不带任何季节标签                -> 1.0
//
//	规则部分：每条命中的 CEL 规则再乘以自身 Multiplier。
type Augmenter struct {
	inSeason  float64
	allSeason float64
	offSeason float64
	rules     []rule
	logger    zerolog.Logger
}

// Option 配置 Augmenter
type Option func(*Augmenter)

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Augmenter) {
		a.logger = logger.With().Str("component", "augment").Logger()
	}
}

// New 创建 Augmenter，规则表达式在此编译，任何一条编译失败都返回错误。
func New(cfg core.ContextConfig, opts ...Option) (*Augmenter, error) {
	a := &Augmenter{
		inSeason:  cfg.InSeason,
		allSeason: cfg.AllSeason,
		offSeason: cfg.OffSeason,
		logger:    zerolog.Nop(),
	}
	def := core.DefaultConfig().Context
	if a.inSeason <= 0 {
		a.inSeason = def.InSeason
	}
	if a.allSeason <= 0 {
		a.allSeason = def.AllSeason
	}
	if a.offSeason <= 0 {
		a.offSeason = def.OffSeason
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, r := range cfg.Rules {
		prg, err := dsl.Compile(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("context rule %s: %w", r.Name, err)
		}
		m := r.Multiplier
		if m <= 0 {
			m = 1
		}
		a.rules = append(a.rules, rule{name: r.Name, multiplier: m, prg: prg})
	}
	return a, nil
}

// Seasonal 返回季节部分的乘数
func (a *Augmenter) Seasonal(tags core.Set, now time.Time) float64 {
	current := SeasonOf(now)
	var hasCurrent, hasAll, hasOff bool
	for raw := range tags {
		tag := core.NormalizeTag(raw)
		switch tag {
		case current:
			hasCurrent = true
		case core.TagAllSeason:
			hasAll = true
		case core.TagOffSeason, core.TagSpring, core.TagSummer, core.TagAutumn, core.TagWinter:
			hasOff = true
		}
	}
	switch {
	case hasCurrent:
		return a.inSeason
	case hasAll:
		return a.allSeason
	case hasOff:
		return a.offSeason
	default:
		return 1.0
	}
}

// Multiplier 返回物品在 now 时刻的完整上下文乘数（季节 × 命中规则），恒为正。
func (a *Augmenter) Multiplier(tags core.Set, now time.Time) float64 {
	return a.MultiplierFor(core.ItemMetadata{Tags: tags}, now)
}

// MultiplierFor 与 Multiplier 相同，但规则可以引用物品的类目、品牌和价格。
func (a *Augmenter) MultiplierFor(meta core.ItemMetadata, now time.Time) float64 {
	m := a.Seasonal(meta.Tags, now)
	if len(a.rules) == 0 {
		return m
	}

	vars := dsl.Vars{
		Tags:     normalizedTags(meta.Tags),
		Category: meta.Category,
		Brand:    meta.Brand,
		Price:    meta.Price,
		Hour:     now.Hour(),
		Weekday:  int(now.Weekday()),
		Month:    int(now.Month()),
		Season:   SeasonOf(now),
	}
	for _, r := range a.rules {
		ok, err := r.prg.Eval(vars)
		if err != nil {
			a.logger.Warn().Err(err).Str("rule", r.name).Str("item_id", meta.ItemID).Msg("context rule failed")
			continue
		}
		if ok {
			m *= r.multiplier
		}
	}
	return m
}

func normalizedTags(tags core.Set) []string {
	out := make([]string, 0, len(tags))
	for raw := range tags {
		if t := core.NormalizeTag(raw); t != "" {
			out = append(out, t)
		}
	}
	return out
}
