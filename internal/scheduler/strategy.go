package scheduler

import (
	"errors"
	"math"
	"sync"

	"github.com/utkarsh5026/taskpool/internal/types"
)

var (
	// ErrAborted is recorded when Abort is called with a nil error.
	ErrAborted = errors.New("scheduler aborted")
	// ErrUnknownStrategy is returned by ParseStrategy and New for unknown policies.
	ErrUnknownStrategy = errors.New("unknown scheduling strategy")
)

// ThreadScheduler is a thread-safe queue handing tasks to pool workers.
// Any new retrieval policy must be expressible through this interface.
type ThreadScheduler interface {
	// Push hands ownership of a task to the scheduler.
	Push(t types.Task)

	// Pop removes and returns the next task for the given worker, or nil when nothing
	// is available or the scheduler has been aborted. A task is never returned twice.
	Pop(threadNum int) types.Task

	// Size returns a snapshot of the number of pending tasks.
	Size() int

	// Abort records err as the failure of the current run and discards pending tasks.
	// Only the first error is kept; Abort reports whether err was the one recorded.
	Abort(err error) bool

	// Aborted reports whether Abort has been called since the last Reset.
	Aborted() bool

	// Err returns the recorded abort error. It is held until Reset.
	Err() error

	// Finished is called by a worker after it has run a task popped from this scheduler.
	Finished(t types.Task, threadNum int)

	// Clear discards all pending tasks and returns how many were dropped.
	Clear() int

	// TotalCost is the summed cost of every task pushed since the last Reset.
	TotalCost() float64

	// CostExecuted is the summed cost of every task reported through Finished.
	CostExecuted() float64

	// Reset clears the aborted state and cost counters. Pending tasks are kept.
	Reset()
}

// queue is a retrieval policy. Implementations are not safe for concurrent use;
// Scheduler serializes every call under its mutex.
type queue interface {
	push(t types.Task)
	pop(threadNum int) types.Task
	len() int
	clear() int
	finished(t types.Task)
	foreach(fn func(types.Task))
}

// Scheduler is the ThreadScheduler implementation shared by every policy: a single
// mutex guards the policy queue, the abort slot and the cost counters.
type Scheduler struct {
	mu           sync.Mutex
	q            queue
	strategy     StrategyType
	aborted      bool
	err          error
	cost         float64
	costExecuted float64
	dropped      int
}

var _ ThreadScheduler = (*Scheduler)(nil)

// New creates a scheduler for the given strategy.
func New(strategy StrategyType) (*Scheduler, error) {
	var q queue
	switch strategy {
	case StrategyFIFO:
		q = newFIFOQueue(defaultQueueCapacity)
	case StrategyLIFO:
		q = newLIFOQueue()
	case StrategyLargestCost:
		q = newCostQueue()
	case StrategyMutexes:
		q = newMutexQueue()
	default:
		return nil, ErrUnknownStrategy
	}
	return &Scheduler{q: q, strategy: strategy}, nil
}

// NewFIFO returns a scheduler that pops tasks in push order.
func NewFIFO() *Scheduler {
	return &Scheduler{q: newFIFOQueue(defaultQueueCapacity), strategy: StrategyFIFO}
}

// NewLIFO returns a scheduler that pops the most recently pushed task first.
func NewLIFO() *Scheduler {
	return &Scheduler{q: newLIFOQueue(), strategy: StrategyLIFO}
}

// NewLargestCost returns a scheduler that pops the most expensive pending task first,
// so a large task is not left running alone at the end while other workers idle.
func NewLargestCost() *Scheduler {
	return &Scheduler{q: newCostQueue(), strategy: StrategyLargestCost}
}

// NewMutexes returns a scheduler that avoids handing out tasks whose mutex is held by a
// running task when any other task is available.
func NewMutexes() *Scheduler {
	return &Scheduler{q: newMutexQueue(), strategy: StrategyMutexes}
}

// Strategy returns the retrieval policy of s.
func (s *Scheduler) Strategy() StrategyType {
	return s.strategy
}

func (s *Scheduler) Push(t types.Task) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cost += sanitizeCost(t.Cost())
	s.q.push(t)
}

func (s *Scheduler) Pop(threadNum int) types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aborted {
		return nil
	}
	return s.q.pop(threadNum)
}

func (s *Scheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.len()
}

func (s *Scheduler) Abort(err error) bool {
	if err == nil {
		err = ErrAborted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.q.clear()
	s.dropped += dropped
	if s.aborted {
		debugLog("abort ignored, keeping first error %v, dropped %v", s.err, err)
		return false
	}

	s.aborted = true
	s.err = err
	debugLog("scheduler aborted: %v (discarded %d pending tasks)", err, dropped)
	return true
}

func (s *Scheduler) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scheduler) Finished(t types.Task, threadNum int) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.costExecuted += sanitizeCost(t.Cost())
	s.q.finished(t)
}

// Release returns policy bookkeeping for a popped task that will not run, such as the
// busy mark of its mutex group. The task counts as dropped, not executed.
func (s *Scheduler) Release(t types.Task, threadNum int) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropped++
	s.q.finished(t)
}

func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.q.clear()
	s.dropped += n
	return n
}

// Dropped returns how many tasks were discarded by Clear or Abort without running.
func (s *Scheduler) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Scheduler) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cost
}

func (s *Scheduler) CostExecuted() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.costExecuted
}

func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aborted = false
	s.err = nil
	s.cost = 0
	s.costExecuted = 0
	s.dropped = 0
	s.q.foreach(func(t types.Task) {
		s.cost += sanitizeCost(t.Cost())
	})
}

// sanitizeCost maps NaN to zero so a bad estimate cannot corrupt heap ordering or totals.
func sanitizeCost(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	return c
}
