package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

const (
	maxShift = 62 // 1<<62 still fits in int64
)

// decorrelatedJitterBackoff implements AWS-style decorrelated jitter.
// Algorithm: sleep = min(maxDelay, random(initialDelay, prevSleep * 3))
//
// Each delay depends on the previous one rather than on the attempt number, so idle
// workers that went empty at the same moment drift apart instead of hitting the
// scheduler lock together.
//
// Reference: AWS Architecture Blog - "Exponential Backoff And Jitter" (Marc Brooker, 2015)
type decorrelatedJitterBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	prevDelay    time.Duration
	rng          *rand.Rand
	mu           sync.Mutex
}

func newDecorrelatedJitterBackoff(initialDelay, maxDelay time.Duration) *decorrelatedJitterBackoff {
	return &decorrelatedJitterBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		prevDelay:    initialDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for poll jitter
	}
}

// NextDelay returns a delay between initialDelay and 3x the previous delay,
// capped at maxDelay.
func (djb *decorrelatedJitterBackoff) NextDelay(attempt int) time.Duration {
	djb.mu.Lock()
	defer djb.mu.Unlock()

	if attempt <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	upperBound := min(time.Duration(float64(djb.prevDelay)*3), djb.maxDelay)

	delayRange := upperBound - djb.initialDelay
	if delayRange <= 0 {
		djb.prevDelay = djb.initialDelay
		return djb.initialDelay
	}

	delay := djb.initialDelay + time.Duration(djb.rng.Int63n(int64(delayRange)))
	djb.prevDelay = delay
	return delay
}

func (djb *decorrelatedJitterBackoff) Reset() {
	djb.mu.Lock()
	defer djb.mu.Unlock()
	djb.prevDelay = djb.initialDelay
}

// jitteredBackoff is exponential backoff scaled by a random factor in
// [1-jitterFactor, 1+jitterFactor].
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64
	rng                    *rand.Rand
	mu                     sync.Mutex
}

// newJitteredBackoff creates a new jittered backoff strategy.
// jitterFactor is clamped to [0, 1].
func newJitteredBackoff(initialDelay, maxDelay time.Duration, jitterFactor float64) *jitteredBackoff {
	return &jitteredBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		jitterFactor: clamp(jitterFactor, 0, 1),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- crypto rand not needed for poll jitter
	}
}

func (jb *jitteredBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	base := calcExponentialDelay(attempt, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	multiplier := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	return clamp(time.Duration(float64(base)*multiplier), 0, jb.maxDelay)
}

func (jb *jitteredBackoff) Reset() {}

// exponentialBackoff doubles the delay on every empty poll:
// initialDelay, 2x, 4x, ... until maxDelay.
type exponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
}

func newExponentialBackoff(initialDelay, maxDelay time.Duration) *exponentialBackoff {
	return &exponentialBackoff{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}
}

func (eb *exponentialBackoff) NextDelay(attempt int) time.Duration {
	return calcExponentialDelay(attempt, eb.initialDelay, eb.maxDelay)
}

func (eb *exponentialBackoff) Reset() {}

// calcExponentialDelay uses bit shifting (2^n) instead of math.Pow and saturates at
// maxDelay on overflow.
func calcExponentialDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}

	if attempt >= maxShift {
		return maxDelay
	}

	delay := time.Duration(int64(1)<<uint(attempt)) * initialDelay
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}

	return delay
}
