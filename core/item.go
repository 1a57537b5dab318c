package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rushteam/swipekit/pkg/utils"
)

// Item 是选品链上的一个候选。Score 决定排序，Features 记录打分分项，
// Labels 记录各阶段的判断（explain 输出的来源）。
type Item struct {
	ID       string
	Meta     ItemMetadata
	Score    float64
	Features map[string]float64
	Labels   map[string]utils.Label
}

// NewItem 由目录元数据创建候选
func NewItem(meta ItemMetadata) *Item {
	return &Item{
		ID:       meta.ItemID,
		Meta:     meta,
		Score:    0,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label，同名 key 按 utils.MergeLabel 累积
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	it.Labels[key] = utils.MergeLabel(it.Labels[key], lbl)
}

// SetFeature 记录打分分项（quality / affinity / context 等），便于 explain。
func (it *Item) SetFeature(key string, v float64) {
	if it.Features == nil {
		it.Features = make(map[string]float64)
	}
	it.Features[key] = v
}

// SortItems 按 Score 降序排序，同分按 ID 升序，保证输出确定。
func SortItems(items []*Item) {
	slices.SortStableFunc(items, func(a, b *Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
