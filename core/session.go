package core

import "time"

// SessionStatus 是会话状态机的状态。
type SessionStatus string

const (
	SessionNormal               SessionStatus = "normal"                 // 正常
	SessionCategoryShiftPending SessionStatus = "category_shift_pending" // 连续拒绝达到阈值，下批降权当前类目
	SessionBreakSuggested       SessionStatus = "break_suggested"        // 连续拒绝过多，建议休息
)

// SessionState 是单个用户一次连续使用期间的可变状态。
//
// 只有 session.Tracker 可以修改它，且同一用户的写入必须串行（单写者）。
// Version 每次成功写入递增，用于乐观并发控制。
type SessionState struct {
	UserID                string        `json:"user_id"`
	Status                SessionStatus `json:"status"`
	ConsecutiveRejections int           `json:"consecutive_rejections"`
	LastDecisionCategory  string        `json:"last_decision_category,omitempty"`
	ShownItemIDs          Set           `json:"shown_item_ids"`
	SessionStartedAt      time.Time     `json:"session_started_at"`
	LastActivityAt        time.Time     `json:"last_activity_at"`
	TotalLifetimeSwipes   int           `json:"total_lifetime_swipes"`

	// BreakSignaled 表示本轮连续拒绝已经下发过一次休息建议
	BreakSignaled bool `json:"break_signaled"`

	Version int64 `json:"version"`
}

// NewSessionState 创建初始状态：Normal、计数为零。
func NewSessionState(userID string, now time.Time) *SessionState {
	return &SessionState{
		UserID:           userID,
		Status:           SessionNormal,
		ShownItemIDs:     NewSet(),
		SessionStartedAt: now,
		LastActivityAt:   now,
	}
}

// Clone 深拷贝，Tracker 在副本上做状态迁移，写入成功后才替换。
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.ShownItemIDs = s.ShownItemIDs.Clone()
	return &out
}

// BreakPending 判断是否需要在本次返回中下发休息建议（每轮只下发一次）。
func (s *SessionState) BreakPending() bool {
	return s != nil && s.Status == SessionBreakSuggested && !s.BreakSignaled
}

// CategoryShiftActive 判断下一批是否需要降权 LastDecisionCategory。
func (s *SessionState) CategoryShiftActive() bool {
	if s == nil || s.LastDecisionCategory == "" {
		return false
	}
	return s.Status == SessionCategoryShiftPending || s.Status == SessionBreakSuggested
}
