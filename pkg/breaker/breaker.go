// Package breaker 用 gobreaker 包装远程调用：连续失败达到阈值后熔断，超时后半开探测。
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
)

// Settings 是熔断配置，零值字段使用默认值。
type Settings struct {
	Name string

	// ConsecutiveFailures 连续失败多少次后熔断，默认 5
	ConsecutiveFailures uint32

	// Timeout 熔断后多久进入半开状态，默认 30s
	Timeout time.Duration

	// Interval 闭合状态下计数清零周期，默认 60s
	Interval time.Duration
}

// Breaker 是泛型熔断器
type Breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

func New[T any](s Settings) *Breaker[T] {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	threshold := s.ConsecutiveFailures

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return &Breaker[T]{name: s.Name, cb: cb}
}

// Execute 在熔断保护下执行 fn；熔断打开时返回包装了 core.ErrModelUnavailable 的错误。
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	out, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		var zero T
		return zero, errors.Join(err, core.ErrModelUnavailable)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return out, err
}

// State 返回当前状态：closed / half-open / open
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
