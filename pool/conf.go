package pool

import (
	"time"

	"golang.org/x/time/rate"
)

// ThreadPoolOption is a functional option for configuring a ThreadPool.
type ThreadPoolOption func(*poolConfig)

type poolConfig struct {
	numThreads      int
	progress        Progress
	maxCores        MaxCoresProvider
	name            string
	logger          Logger
	metrics         Metrics
	rateLimiter     *rate.Limiter
	backoffType     BackoffType
	backoffInitial  time.Duration
	backoffMax      time.Duration
	backoffJitter   float64
	affinity        bool
	beforeTaskStart func(Task)
	onTaskEnd       func(Task, error)
}

// WithThreads sets the number of worker threads.
// 0 (the default) detects the physical core count, bounded by WithMaxCores.
// Negative values are ignored.
func WithThreads(n int) ThreadPoolOption {
	return func(cfg *poolConfig) {
		if n >= 0 {
			cfg.numThreads = n
		}
	}
}

// WithProgress attaches a reporter that is notified once per completed task.
// If p implements io.Closer, ThreadPool.Close closes it.
func WithProgress(p Progress) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.progress = p
	}
}

// WithMaxCores bounds the auto-detected thread count. It is consulted once, when the
// pool is created, and only when no explicit thread count is set.
func WithMaxCores(p MaxCoresProvider) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.maxCores = p
	}
}

// WithName labels the pool in log lines and metrics.
func WithName(name string) ThreadPoolOption {
	return func(cfg *poolConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) ThreadPoolOption {
	return func(cfg *poolConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.metrics = m
	}
}

// WithRateLimit caps how fast workers start tasks, across the whole pool.
// tasksPerSecond specifies the sustained rate and burst the number of tasks that may
// start back to back. Non-positive values disable the limit.
//
// Example:
//
//	WithRateLimit(10, 5) // at most 10 task starts/sec, bursts of 5
func WithRateLimit(tasksPerSecond float64, burst int) ThreadPoolOption {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		} else {
			cfg.rateLimiter = nil
		}
	}
}

// WithIdleBackoff configures how an idle worker spaces its polls while it waits for new
// tasks during Start's wait budget. Defaults: exponential, 1ms initial, 10ms max.
func WithIdleBackoff(kind BackoffType, initial, maxDelay time.Duration) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.backoffType = kind
		if initial > 0 {
			cfg.backoffInitial = initial
		}
		if maxDelay > 0 {
			cfg.backoffMax = maxDelay
		}
	}
}

// WithCPUAffinity locks every worker goroutine to its own OS thread and pins that
// thread to a core where the platform supports it.
func WithCPUAffinity() ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.affinity = true
	}
}

// WithBeforeTaskStart registers a hook called by the worker right before a task runs.
// If the hook panics the task is not run and the pool aborts with a *PanicError.
func WithBeforeTaskStart(fn func(Task)) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook called after a task returns, with its error. A panic
// in the hook aborts the pool with a *PanicError unless the task already failed.
func WithOnTaskEnd(fn func(Task, error)) ThreadPoolOption {
	return func(cfg *poolConfig) {
		cfg.onTaskEnd = fn
	}
}

func createConfig(opts ...ThreadPoolOption) *poolConfig {
	cfg := &poolConfig{
		name:           "threadpool",
		logger:         NoOpLogger{},
		backoffType:    BackoffExponential,
		backoffInitial: time.Millisecond,
		backoffMax:     10 * time.Millisecond,
		backoffJitter:  0.1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.backoffMax = max(cfg.backoffMax, cfg.backoffInitial)
	return cfg
}
