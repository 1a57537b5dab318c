// Package quality 计算物品的静态品质分：评分比例的 Wilson 置信下界，映射到 [0,100]。
package quality

import (
	"math"
	"sync"

	"github.com/rushteam/swipekit/core"
)

// MaxRating 是评分上限（五星制）
const MaxRating = 5.0

// Scorer 是品质分计算器，纯函数 + 并发安全的记忆化缓存。
//
// 计算方式：
//
//	p      = rating_average / 5
//	wilson = (p + z²/2n − z·sqrt(p(1−p)/n + z²/4n²)) / (1 + z²/n)
//	score  = clamp(round(wilson·100), 0, 100)
//
// rating_count == 0 时返回固定基线（默认 30）。
type Scorer struct {
	baseline float64
	z        float64

	mu    sync.RWMutex
	cache map[cacheKey]float64
}

type cacheKey struct {
	count   int
	average float64
}

// NewScorer 创建品质分计算器，非法配置回退到默认值
func NewScorer(cfg core.QualityConfig) *Scorer {
	if cfg.Z <= 0 {
		cfg.Z = core.DefaultQualityZ
	}
	if cfg.Baseline < 0 || cfg.Baseline > 100 {
		cfg.Baseline = core.DefaultQualityBaseline
	}
	return &Scorer{
		baseline: cfg.Baseline,
		z:        cfg.Z,
		cache:    make(map[cacheKey]float64),
	}
}

// Score 返回 [0,100] 的品质分。
// ratingCount < 0 或 ratingAverage 不在 [0,5]（含 NaN）时返回 core.ErrInvalidRating。
func (s *Scorer) Score(ratingCount int, ratingAverage float64) (float64, error) {
	if ratingCount < 0 || math.IsNaN(ratingAverage) || ratingAverage < 0 || ratingAverage > MaxRating {
		return 0, core.ErrInvalidRating
	}
	if ratingCount == 0 {
		return s.baseline, nil
	}

	key := cacheKey{count: ratingCount, average: ratingAverage}
	s.mu.RLock()
	v, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	v = wilsonScore(ratingCount, ratingAverage, s.z)
	if math.IsNaN(v) {
		return 0, core.ErrInvalidRating
	}

	s.mu.Lock()
	s.cache[key] = v
	s.mu.Unlock()
	return v, nil
}

// ScoreItem 是 Score 的便捷形式
func (s *Scorer) ScoreItem(meta core.ItemMetadata) (float64, error) {
	return s.Score(meta.RatingCount, meta.RatingAverage)
}

func wilsonScore(n int, average, z float64) float64 {
	nf := float64(n)
	p := average / MaxRating
	z2 := z * z
	center := p + z2/(2*nf)
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))
	lower := (center - margin) / (1 + z2/nf)
	return clamp(math.Round(lower*100), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
