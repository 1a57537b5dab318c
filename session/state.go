// Package session 维护每个用户的会话状态机：连续拒绝计数、已展示集合、休息建议。
//
//	            reject×3                 reject×5
//	Normal ──────────────> CategoryShiftPending ──────────> BreakSuggested
//	  ^                         │                                │
//	  └──── accept / 确认休息 / 空闲超时 ─────────────────────────┘
//
// 状态由连续拒绝次数派生：>= BreakThreshold 为 BreakSuggested，
// >= CategoryShiftThreshold 为 CategoryShiftPending，否则为 Normal。
package session

import (
	"time"

	"github.com/rushteam/swipekit/core"
)

// Thresholds 是状态迁移阈值
type Thresholds struct {
	CategoryShift int
	Break         int
}

// ThresholdsFrom 从配置读取阈值，非法值回退到默认
func ThresholdsFrom(cfg core.SessionConfig) Thresholds {
	th := Thresholds{CategoryShift: cfg.CategoryShiftThreshold, Break: cfg.BreakThreshold}
	if th.CategoryShift <= 0 {
		th.CategoryShift = core.DefaultCategoryShiftThreshold
	}
	if th.Break < th.CategoryShift {
		th.Break = max(core.DefaultBreakThreshold, th.CategoryShift)
	}
	return th
}

// StatusFor 由连续拒绝次数派生状态
func (th Thresholds) StatusFor(rejections int) core.SessionStatus {
	switch {
	case rejections >= th.Break:
		return core.SessionBreakSuggested
	case rejections >= th.CategoryShift:
		return core.SessionCategoryShiftPending
	default:
		return core.SessionNormal
	}
}

// Swipe 是一次滑动输入
type Swipe struct {
	ItemID   string
	Category string
	Decision core.Decision
	At       time.Time
}

// Apply 在副本上执行一次滑动的状态迁移，不修改入参。
//
//   - accept 清零连续拒绝，并结束本轮休息建议
//   - reject 连续拒绝 +1
//   - LastDecisionCategory 记为本次滑动物品的类目
//   - 滑动过的物品计入已展示集合
func Apply(st *core.SessionState, sw Swipe, th Thresholds) *core.SessionState {
	next := st.Clone()
	if next.ShownItemIDs == nil {
		next.ShownItemIDs = core.NewSet()
	}

	switch sw.Decision {
	case core.DecisionAccept:
		next.ConsecutiveRejections = 0
		next.BreakSignaled = false
	case core.DecisionReject:
		next.ConsecutiveRejections++
	}

	next.Status = th.StatusFor(next.ConsecutiveRejections)
	next.LastDecisionCategory = sw.Category
	next.TotalLifetimeSwipes++
	if sw.ItemID != "" {
		next.ShownItemIDs.Add(sw.ItemID)
	}
	if sw.At.After(next.LastActivityAt) {
		next.LastActivityAt = sw.At
	}
	return next
}

// MarkServed 把一批返回的物品计入已展示集合。若本轮休息建议尚未下发，
// 由这次返回认领：置 BreakSignaled 并返回 true。
func MarkServed(st *core.SessionState, itemIDs []string, now time.Time) (*core.SessionState, bool) {
	next := st.Clone()
	if next.ShownItemIDs == nil {
		next.ShownItemIDs = core.NewSet()
	}
	for _, id := range itemIDs {
		next.ShownItemIDs.Add(id)
	}
	claimed := next.BreakPending()
	if claimed {
		next.BreakSignaled = true
	}
	if now.After(next.LastActivityAt) {
		next.LastActivityAt = now
	}
	return next, claimed
}

// Acknowledge 用户确认休息：回到 Normal，清零连续拒绝，保留已展示集合。
func Acknowledge(st *core.SessionState, now time.Time) *core.SessionState {
	next := st.Clone()
	next.Status = core.SessionNormal
	next.ConsecutiveRejections = 0
	next.BreakSignaled = false
	next.LastDecisionCategory = ""
	if now.After(next.LastActivityAt) {
		next.LastActivityAt = now
	}
	return next
}

// Restart 开启新会话：清空会话内状态，保留累计滑动数与版本号。
func Restart(st *core.SessionState, now time.Time) *core.SessionState {
	next := core.NewSessionState(st.UserID, now)
	next.TotalLifetimeSwipes = st.TotalLifetimeSwipes
	next.Version = st.Version
	return next
}

// Expired 判断会话是否已空闲超时；idle <= 0 表示不超时
func Expired(st *core.SessionState, idle time.Duration, now time.Time) bool {
	if idle <= 0 || st.LastActivityAt.IsZero() {
		return false
	}
	return now.Sub(st.LastActivityAt) > idle
}
