package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/recommend", "200"))
	RecordAPIRequest("GET", "/recommend", "200", 10*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/recommend", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("gauge = %v", got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("gauge = %v", got)
	}
}

func TestObserveNodeError(t *testing.T) {
	before := testutil.ToFloat64(NodeErrors.WithLabelValues("rank.model"))
	ObserveNode("rank.model", time.Millisecond, 3, 0, errors.New("boom"))
	if got := testutil.ToFloat64(NodeErrors.WithLabelValues("rank.model")); got != before+1 {
		t.Errorf("errors = %v", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	RecordRecommendation("similar", "ok")
	if got := testutil.ToFloat64(RecommendationsTotal.WithLabelValues("similar", "ok")); got < 1 {
		t.Errorf("count = %v", got)
	}
}
