package algorithms

import "time"

// BackoffStrategy computes how long an idle worker sleeps before polling its scheduler
// again.
//
// Note: This interface is exported so the pool package can hold a strategy value,
// but implementations remain internal.
type BackoffStrategy interface {
	// NextDelay returns the sleep before the next poll. attempt is 0-indexed and counts
	// consecutive empty polls within the current idle period.
	NextDelay(attempt int) time.Duration

	// Reset clears any internal state. Workers call it whenever they pick up a task,
	// which starts a new idle period.
	Reset()
}
