package algorithms

import "time"

// BackoffType defines the idle backoff algorithm to use.
type BackoffType int

const (
	// BackoffExponential uses simple exponential backoff (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered adds random jitter so idle workers do not poll in lockstep.
	BackoffJittered
	// BackoffDecorrelated uses AWS-style decorrelated jitter.
	BackoffDecorrelated
)

// NewBackoffStrategy creates a backoff strategy based on the configuration.
// Each worker gets its own instance, so stateful strategies never share state.
func NewBackoffStrategy(
	backoffType BackoffType,
	initialDelay, maxDelay time.Duration,
	jitterFactor float64,
) BackoffStrategy {
	if initialDelay <= 0 {
		initialDelay = time.Millisecond
	}
	maxDelay = max(maxDelay, initialDelay)

	switch backoffType {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)

	case BackoffDecorrelated:
		return newDecorrelatedJitterBackoff(initialDelay, maxDelay)

	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}

func clamp[T int | int64 | float64 | time.Duration](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
