package core

import (
	"math"

	"github.com/goccy/go-json"
)

// PriceRange 是用户可接受的价格区间，Max 为 +Inf 表示无上限。
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UnrestrictedPriceRange 返回 [0, +Inf)
func UnrestrictedPriceRange() PriceRange {
	return PriceRange{Min: 0, Max: math.Inf(1)}
}

// Unrestricted 判断是否为不限价格
func (r PriceRange) Unrestricted() bool {
	return r.Min <= 0 && math.IsInf(r.Max, 1)
}

// Contains 判断价格是否落在区间内（闭区间）
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// PreferenceProfile 是从交互历史实时推导出的用户偏好画像。
//
// 它不是持久化对象：每次请求都由 preference.Estimator 重新计算，
// 同样的事件、物品与参考时间必然得到同样的画像。
//
//	维度                  作用
//	LikedTagWeights       正向标签亲和（衰减加权）
//	DislikedTagWeights    负向标签亲和（衰减加权）
//	PriceRange            加权四分位价格带
//	PreferredBrands       高于阈值的品牌
//	PreferredCategories   高于阈值的类目
type PreferenceProfile struct {
	LikedTagWeights     map[string]float64 `json:"liked_tag_weights"`
	DislikedTagWeights  map[string]float64 `json:"disliked_tag_weights"`
	PriceRange          PriceRange         `json:"price_range"`
	PreferredBrands     Set                `json:"preferred_brands"`
	PreferredCategories Set                `json:"preferred_categories"`
}

// UnconstrainedProfile 返回冷启动画像：空权重、不限价格、空偏好集合。
func UnconstrainedProfile() PreferenceProfile {
	return PreferenceProfile{
		LikedTagWeights:     make(map[string]float64),
		DislikedTagWeights:  make(map[string]float64),
		PriceRange:          UnrestrictedPriceRange(),
		PreferredBrands:     NewSet(),
		PreferredCategories: NewSet(),
	}
}

// IsColdStart 判断画像是否为冷启动信号（Selector 据此走热门兜底）。
func (p *PreferenceProfile) IsColdStart() bool {
	if p == nil {
		return true
	}
	return len(p.LikedTagWeights) == 0 &&
		len(p.DislikedTagWeights) == 0 &&
		p.PriceRange.Unrestricted() &&
		len(p.PreferredBrands) == 0 &&
		len(p.PreferredCategories) == 0
}

// LikedWeight 获取正向标签权重
func (p *PreferenceProfile) LikedWeight(tag string) float64 {
	if p == nil || p.LikedTagWeights == nil {
		return 0
	}
	return p.LikedTagWeights[tag]
}

// DislikedWeight 获取负向标签权重
func (p *PreferenceProfile) DislikedWeight(tag string) float64 {
	if p == nil || p.DislikedTagWeights == nil {
		return 0
	}
	return p.DislikedTagWeights[tag]
}

type priceRangeJSON struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max"`
}

// MarshalJSON 把无上限编码为 null（JSON 不支持 Inf）
func (r PriceRange) MarshalJSON() ([]byte, error) {
	out := priceRangeJSON{Min: r.Min}
	if !math.IsInf(r.Max, 1) {
		hi := r.Max
		out.Max = &hi
	}
	return json.Marshal(out)
}

func (r *PriceRange) UnmarshalJSON(data []byte) error {
	var in priceRangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Min = in.Min
	r.Max = math.Inf(1)
	if in.Max != nil {
		r.Max = *in.Max
	}
	return nil
}
