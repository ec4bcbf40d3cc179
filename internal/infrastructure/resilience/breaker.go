// Package resilience wraps calls to optional backends in a circuit breaker.
package resilience

import (
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker opens after at least five requests with a 60% failure
// ratio and probes again after ten seconds.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open probes
		Interval:    30 * time.Second, // closed-state counter reset
		Timeout:     10 * time.Second, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// Execute runs fn through cb and returns its typed result.
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) { return fn() })
	v, _ := out.(T)
	return v, err
}
