package types

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrTaskAlreadyRun is returned by a closure task's Run when it has already been executed.
var ErrTaskAlreadyRun = errors.New("task already run")

// Task is one schedulable unit of work.
//
// Cost is a relative weight used only to order retrieval from a scheduler; it must not
// change once the task has been pushed. Run executes the work and is called at most once
// by the pool. Any error it returns is surfaced unmodified from ThreadPool.JoinAll.
type Task interface {
	Cost() float64
	Run() error
}

// MutexHolder is implemented by tasks that must not run concurrently with other tasks
// holding the same mutex. The worker locks the mutex around Run.
type MutexHolder interface {
	Mutex() *sync.Mutex
}

// funcTask adapts a closure and a fixed cost to the Task interface.
type funcTask struct {
	cost float64
	fn   func() error
	mu   *sync.Mutex
	ran  atomic.Bool
}

// NewTask wraps fn as a Task with the given cost.
//
// Example:
//
//	t := NewTask(float64(len(spectrum)), func() error {
//	    return integrate(spectrum)
//	})
func NewTask(cost float64, fn func() error) Task {
	return &funcTask{cost: cost, fn: fn}
}

// NewMutexTask wraps fn as a Task that is serialized against every other task sharing mu.
func NewMutexTask(cost float64, mu *sync.Mutex, fn func() error) Task {
	return &mutexTask{funcTask{cost: cost, fn: fn, mu: mu}}
}

func (t *funcTask) Cost() float64 {
	return t.cost
}

func (t *funcTask) Run() error {
	if !t.ran.CompareAndSwap(false, true) {
		return ErrTaskAlreadyRun
	}
	if t.fn == nil {
		return nil
	}
	return t.fn()
}

// mutexTask is a funcTask that exposes its mutex to schedulers and workers.
type mutexTask struct {
	funcTask
}

func (t *mutexTask) Mutex() *sync.Mutex {
	return t.mu
}

// MutexOf returns the mutex of t, or nil if the task does not carry one.
func MutexOf(t Task) *sync.Mutex {
	if h, ok := t.(MutexHolder); ok {
		return h.Mutex()
	}
	return nil
}

// PanicError is returned by Execute when a task panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Execute runs t and converts a panic into a *PanicError so a single task cannot crash
// the worker goroutine. Errors returned by t.Run are passed through untouched.
func Execute(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	return t.Run()
}

// Guard calls fn and converts a panic into a *PanicError. It is used for callbacks
// that run on a worker next to a task.
func Guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()

	fn()
	return nil
}

func newPanicError(r any) *PanicError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: r, Stack: buf[:n]}
}
