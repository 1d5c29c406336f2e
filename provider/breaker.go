package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cloudshift-ai/cloudshift"
)

// BreakerConfig configures the circuit breaker around external model calls.
type BreakerConfig struct {
	Name        string        // Breaker name used in errors (default: "llm")
	MaxFailures uint32        // Consecutive failures before the circuit opens (default: 5)
	Timeout     time.Duration // Open-state duration before a trial call (default: 30s)
}

// NewBreaker creates a circuit breaker for model calls. A run of provider
// failures stops the pipeline from burning budget on a dead endpoint.
func NewBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	name := cfg.Name
	if name == "" {
		name = "llm"
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
}

// NewBreakerTranslateFunc wraps a translation function with the breaker.
// While the circuit is open, calls fail fast with a retryable ProviderError
// instead of reaching the remote API.
func NewBreakerTranslateFunc(fn cloudshift.TranslateFunc, cb *gobreaker.CircuitBreaker) cloudshift.TranslateFunc {
	return func(ctx context.Context, block cloudshift.Block, sourceProvider, targetProvider, modelID string) (cloudshift.Block, error) {
		out, err := cb.Execute(func() (any, error) {
			return fn(ctx, block, sourceProvider, targetProvider, modelID)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return nil, &cloudshift.ProviderError{
					Message:   "model endpoint circuit open",
					Cause:     err,
					Retryable: true,
				}
			}
			return nil, err
		}
		return out.(cloudshift.Block), nil
	}
}
