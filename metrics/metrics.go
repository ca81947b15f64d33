// Package metrics 定义 Prometheus 指标：HTTP 接口、Pipeline 节点、模型调用、熔断器与快照构建。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 接口
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "placerec_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Pipeline
	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_pipeline_node_duration_seconds",
			Help:    "Duration of a pipeline node in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"node"},
	)

	NodeItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_pipeline_node_items",
			Help:    "Number of items output by a pipeline node",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
		[]string{"node"},
	)

	NodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_pipeline_node_errors_total",
			Help: "Total number of pipeline node errors",
		},
		[]string{"node"},
	)

	// 推荐结果
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_recommendations_total",
			Help: "Total number of recommendation requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// 模型服务
	ModelRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_model_request_duration_seconds",
			Help:    "Model serving request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)

	// 熔断器
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "placerec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_circuit_breaker_requests_total",
			Help: "Requests through circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// 快照
	SnapshotBuildDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "placerec_snapshot_build_seconds",
			Help: "Time spent building the recommendation snapshot",
		},
	)

	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "placerec_snapshot_size",
			Help: "Size of the loaded snapshot by kind",
		},
		[]string{"kind"}, // places / ratings / users / skipped_rows
	)
)

// RecordAPIRequest 记录一次 HTTP 请求
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveNode 作为 pipeline.Pipeline 的 Observer 使用
func ObserveNode(node string, elapsed time.Duration, _ int, out int, err error) {
	NodeDuration.WithLabelValues(node).Observe(elapsed.Seconds())
	if err != nil {
		NodeErrors.WithLabelValues(node).Inc()
		return
	}
	NodeItems.WithLabelValues(node).Observe(float64(out))
}

// RecordRecommendation kind: similar / personal；outcome: ok / not_found / unavailable / error
func RecordRecommendation(kind, outcome string) {
	RecommendationsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordModelRequest(service string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ModelRequestDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}
