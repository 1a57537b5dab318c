// Package swipekit 是一个滑动流推荐引擎：根据用户的 accept/reject 滑动，
// 为下一批卡片选品并排序。
//
// 设计要点：
//   - Pipeline-first: 选品通过 Node 串联（Filter → Rank → ReRank → PostProcess）
//   - Labels-first: 冷启动、探索、类目切换等标签全链路透传，支持 explain
//   - 纯计算 + 协作方：打分与选品只读内存快照；目录、事件日志、会话状态由 store 提供
//
// 入口是 recommend.Service 的 GetRecommendations 与 RecordSwipe。
package swipekit

import (
	"github.com/rushteam/swipekit/pipeline"
	"github.com/rushteam/swipekit/recommend"
)

// 轻量 facade：便于直接 import "github.com/rushteam/swipekit" 使用核心抽象。
type (
	Service         = recommend.Service
	Recommendations = recommend.Recommendations
	Pipeline        = pipeline.Pipeline
	Node            = pipeline.Node
	Kind            = pipeline.Kind
)

// NewService 创建推荐服务，见 recommend.NewService
var NewService = recommend.NewService

const (
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
