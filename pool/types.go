package pool

import (
	"sync"
	"time"

	"github.com/utkarsh5026/taskpool/internal/algorithms"
	"github.com/utkarsh5026/taskpool/internal/scheduler"
	"github.com/utkarsh5026/taskpool/internal/types"
)

// Task is one schedulable unit of work: a relative cost used for ordering and a Run
// method executed at most once by a pool worker.
type Task = types.Task

// MutexHolder is implemented by tasks that must be serialized against every other task
// sharing the same mutex.
type MutexHolder = types.MutexHolder

// PanicError is the error JoinAll returns when a task panicked.
type PanicError = types.PanicError

// ThreadScheduler is the thread-safe queue a ThreadPool pulls tasks from.
type ThreadScheduler = scheduler.ThreadScheduler

// StrategyType selects a built-in scheduler policy.
type StrategyType = scheduler.StrategyType

// BackoffType selects how idle workers space out their polls while waiting for work.
type BackoffType = algorithms.BackoffType

const (
	StrategyFIFO        = scheduler.StrategyFIFO
	StrategyLIFO        = scheduler.StrategyLIFO
	StrategyLargestCost = scheduler.StrategyLargestCost
	StrategyMutexes     = scheduler.StrategyMutexes
)

const (
	BackoffExponential  = algorithms.BackoffExponential
	BackoffJittered     = algorithms.BackoffJittered
	BackoffDecorrelated = algorithms.BackoffDecorrelated
)

var (
	// ErrTaskAlreadyRun is returned when a closure task is run a second time.
	ErrTaskAlreadyRun = types.ErrTaskAlreadyRun
	// ErrAborted is held by a scheduler that was aborted without an error value.
	ErrAborted = scheduler.ErrAborted
	// ErrUnknownStrategy is returned for scheduler names or types that do not exist.
	ErrUnknownStrategy = scheduler.ErrUnknownStrategy
)

// NewTask wraps fn as a Task with a fixed cost.
func NewTask(cost float64, fn func() error) Task {
	return types.NewTask(cost, fn)
}

// NewMutexTask wraps fn as a Task that never runs concurrently with another task
// holding mu.
func NewMutexTask(cost float64, mu *sync.Mutex, fn func() error) Task {
	return types.NewMutexTask(cost, mu, fn)
}

// NewFIFOScheduler returns a scheduler handing out tasks in push order.
func NewFIFOScheduler() ThreadScheduler {
	return scheduler.NewFIFO()
}

// NewLIFOScheduler returns a scheduler handing out the newest task first.
func NewLIFOScheduler() ThreadScheduler {
	return scheduler.NewLIFO()
}

// NewLargestCostScheduler returns a scheduler handing out the most expensive task first.
// Tasks of equal cost keep their push order.
func NewLargestCostScheduler() ThreadScheduler {
	return scheduler.NewLargestCost()
}

// NewMutexesScheduler returns a scheduler that prefers tasks whose mutex is not held by
// a running task.
func NewMutexesScheduler() ThreadScheduler {
	return scheduler.NewMutexes()
}

// NewScheduler creates a scheduler for the given strategy.
func NewScheduler(strategy StrategyType) (ThreadScheduler, error) {
	s, err := scheduler.New(strategy)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseStrategy converts "fifo", "lifo", "largest_cost" or "mutexes" to a StrategyType.
func ParseStrategy(name string) (StrategyType, error) {
	return scheduler.ParseStrategy(name)
}

// Progress receives one Report call per successfully completed task. Implementations
// must be safe for concurrent use; workers report from their own goroutines. A panic in
// Report aborts the pool with a *PanicError.
type Progress interface {
	Report()
}

// MaxCoresProvider supplies the optional upper bound on auto-detected worker counts
// (the "MultiThreaded.MaxCores" setting). ok is false when no bound is configured.
type MaxCoresProvider interface {
	MaxCores() (n int, ok bool)
}

// MaxCoresFunc adapts a plain function to MaxCoresProvider.
type MaxCoresFunc func() (int, bool)

// MaxCores implements MaxCoresProvider.
func (f MaxCoresFunc) MaxCores() (int, bool) {
	return f()
}

// Metrics receives pool instrumentation. All methods must be safe for concurrent use.
type Metrics interface {
	RecordTaskDuration(pool string, d time.Duration)
	RecordTaskFailure(pool string)
	RecordDiscardedError(pool string)
	RecordQueueDepth(pool string, depth int)
}
