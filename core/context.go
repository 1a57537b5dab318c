package core

import (
	"time"

	"github.com/rushteam/swipekit/pkg/utils"
)

// RecommendContext 承载一次选品请求的全部输入，贯穿整个 Pipeline 透传。
//
// 所有时间相关的计算都读取 Now，而不是读取墙钟，保证给定输入时结果确定。
type RecommendContext struct {
	UserID string
	Count  int
	Now    time.Time

	// Profile 是本次请求重新推导出的偏好画像；nil 或冷启动画像走热门兜底
	Profile *PreferenceProfile

	// Session 是会话状态快照（只读）
	Session *SessionState

	// Labels 是请求级标签，可驱动整个 Pipeline 行为，例如 cold_start、explore
	Labels map[string]utils.Label

	// Params 请求级扩展参数
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	rctx.Labels[key] = utils.MergeLabel(rctx.Labels[key], lbl)
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// IsColdStart 判断本次请求是否按冷启动处理
func (rctx *RecommendContext) IsColdStart() bool {
	return rctx == nil || rctx.Profile.IsColdStart()
}
