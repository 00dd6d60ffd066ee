package gateway

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewBreaker builds the circuit breaker that guards gateway order creation.
// The breaker trips when at least threshold requests have been seen in the
// rolling interval and 60% of them failed.
func NewBreaker(name string, threshold uint32, timeout time.Duration) *gobreaker.CircuitBreaker[*Order] {
	return gobreaker.NewCircuitBreaker[*Order](gobreaker.Settings{
		Name:        name,
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= threshold && failureRatio >= 0.6
		},
	})
}
