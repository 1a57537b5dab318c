package core

import (
	"strings"
	"time"
)

// Decision 是用户对一张卡片的二元滑动决策。
type Decision string

const (
	DecisionAccept Decision = "accept" // 右滑/喜欢
	DecisionReject Decision = "reject" // 左滑/跳过
)

// Valid 判断决策是否合法
func (d Decision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// ParseDecision 解析决策字符串（大小写不敏感），兼容 like/dislike 写法。
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "like", "right":
		return DecisionAccept, nil
	case "reject", "dislike", "left", "skip":
		return DecisionReject, nil
	default:
		return "", ErrInvalidDecision
	}
}

// InteractionEvent 是一次滑动产生的不可变事实，只追加不修改。
type InteractionEvent struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Decision  Decision  `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}
