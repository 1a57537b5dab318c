// Package metrics 暴露引擎的 Prometheus 指标（注册到默认 Registry）。
//
//	swipekit_recommend_requests_total        请求数，标签 outcome(ok/empty/error)
//	swipekit_recommend_duration_seconds      选品耗时
//	swipekit_recommend_degraded_total        降级次数，标签 reason(events/session)
//	swipekit_swipes_total                    滑动数，标签 decision
//	swipekit_session_transitions_total       会话状态迁移，标签 from、to
//	swipekit_session_conflicts_total         会话写冲突，标签 op
//	swipekit_explore_batches_total           含探索位的批次
//	swipekit_break_suggestions_total         下发的休息建议
//	swipekit_items_excluded_total            被剔除的候选，标签 reason
//	swipekit_unknown_tags_total              目录中的未登记标签
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "swipekit"

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_requests_total",
			Help:      "Total number of get_recommendations calls",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Duration of get_recommendations calls in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	RecommendDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_degraded_total",
			Help:      "Requests served with a degraded input",
		},
		[]string{"reason"},
	)

	Swipes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swipes_total",
			Help:      "Total number of recorded swipes",
		},
		[]string{"decision"},
	)

	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session status transitions",
		},
		[]string{"from", "to"},
	)

	SessionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_conflicts_total",
			Help:      "Optimistic concurrency conflicts on session state",
		},
		[]string{"op"},
	)

	ExploreBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explore_batches_total",
			Help:      "Batches that reserved exploration slots",
		},
	)

	BreakSuggestions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "break_suggestions_total",
			Help:      "Break suggestions returned to callers",
		},
	)

	ItemsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_excluded_total",
			Help:      "Candidates removed before ranking",
		},
		[]string{"reason"},
	)

	UnknownTags = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_tags_total",
			Help:      "Catalog tags outside the registered vocabulary",
		},
	)
)

// RecordRecommend 记录一次选品调用
func RecordRecommend(duration time.Duration, returned int, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case returned == 0:
		outcome = "empty"
	}
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordDegraded 记录一次降级
func RecordDegraded(reason string) {
	RecommendDegraded.WithLabelValues(reason).Inc()
}

// RecordSwipe 记录一次滑动
func RecordSwipe(decision string) {
	Swipes.WithLabelValues(decision).Inc()
}

// RecordTransition 记录状态迁移，状态未变化时不计数
func RecordTransition(from, to string) {
	if from == to {
		return
	}
	SessionTransitions.WithLabelValues(from, to).Inc()
}

// RecordConflict 记录一次写冲突
func RecordConflict(op string) {
	SessionConflicts.WithLabelValues(op).Inc()
}

// RecordExcluded 记录被剔除的候选
func RecordExcluded(reason string, n int) {
	if n <= 0 {
		return
	}
	ItemsExcluded.WithLabelValues(reason).Add(float64(n))
}
