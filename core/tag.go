package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// 季节相关标签
const (
	TagSpring    = "spring"
	TagSummer    = "summer"
	TagAutumn    = "autumn"
	TagWinter    = "winter"
	TagAllSeason = "all_season"
	TagOffSeason = "off_season"
)

// 探索相关标签
const (
	TagNew      = "new"
	TagTrending = "trending"
)

// SeasonTags 是四季标签
var SeasonTags = []string{TagSpring, TagSummer, TagAutumn, TagWinter}

// TagVocabulary 是标签词表：默认封闭，可在启动时扩展。
// 未登记的标签照常参与偏好与亲和度计算，只被报告与计数；导入时可用 Validate 严格拒绝。
type TagVocabulary struct {
	mu   sync.RWMutex
	tags Set
}

// NewTagVocabulary 以内置标签加上 extra 创建词表
func NewTagVocabulary(extra ...string) *TagVocabulary {
	v := &TagVocabulary{tags: NewSet()}
	v.Register(SeasonTags...)
	v.Register(TagAllSeason, TagOffSeason, TagNew, TagTrending)
	v.Register(extra...)
	return v
}

// NormalizeTag 统一大小写与分隔符："All Season" -> "all_season"
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.ReplaceAll(tag, "-", "_")
	return strings.Join(strings.Fields(tag), "_")
}

// Register 向词表登记标签
func (v *TagVocabulary) Register(tags ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range tags {
		if t = NormalizeTag(t); t != "" {
			v.tags.Add(t)
		}
	}
}

// Normalize 把一组标签规范化，返回全部规范化后的标签与其中未登记的部分（有序）。
func (v *TagVocabulary) Normalize(tags Set) (normalized Set, unknown []string) {
	normalized = make(Set, len(tags))
	v.mu.RLock()
	defer v.mu.RUnlock()
	for raw := range tags {
		t := NormalizeTag(raw)
		if t == "" {
			continue
		}
		normalized.Add(t)
		if !v.tags.Has(t) {
			unknown = append(unknown, t)
		}
	}
	sort.Strings(unknown)
	return normalized, unknown
}

// Validate 未登记标签返回 ErrUnknownTag
func (v *TagVocabulary) Validate(tags Set) error {
	_, unknown := v.Normalize(tags)
	if len(unknown) > 0 {
		return ErrUnknownTag.Wrap(fmt.Errorf("%s", strings.Join(unknown, ",")))
	}
	return nil
}
