package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommend(t *testing.T) {
	tests := []struct {
		name     string
		returned int
		err      error
		outcome  string
	}{
		{name: "ok", returned: 5, outcome: "ok"},
		{name: "empty", returned: 0, outcome: "empty"},
		{name: "error", returned: 0, err: errors.New("catalog down"), outcome: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			RecordRecommend(3*time.Millisecond, tt.returned, tt.err)
			after := testutil.ToFloat64(RecommendRequests.WithLabelValues(tt.outcome))
			if after != before+1 {
				t.Errorf("outcome %s: got %v, want %v", tt.outcome, after, before+1)
			}
		})
	}
}

func TestRecordTransition(t *testing.T) {
	c := SessionTransitions.WithLabelValues("normal", "category_shift_pending")
	before := testutil.ToFloat64(c)

	RecordTransition("normal", "normal")
	RecordTransition("normal", "category_shift_pending")

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("transitions = %v, want %v", got, before+1)
	}
}

func TestRecordExcluded(t *testing.T) {
	c := ItemsExcluded.WithLabelValues("invalid_rating")
	before := testutil.ToFloat64(c)

	RecordExcluded("invalid_rating", 0)
	RecordExcluded("invalid_rating", 3)

	if got := testutil.ToFloat64(c); got != before+3 {
		t.Errorf("excluded = %v, want %v", got, before+3)
	}
}
