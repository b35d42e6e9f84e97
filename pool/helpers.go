package pool

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/utkarsh5026/taskpool/internal/cpu"
)

var (
	// ErrInvalidArgument is the class of errors returned for unusable arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNilScheduler is returned by NewThreadPool when no scheduler is given.
	ErrNilScheduler = fmt.Errorf("%w: scheduler must not be nil", ErrInvalidArgument)
	// ErrNilTask is returned by Schedule for a nil task.
	ErrNilTask = fmt.Errorf("%w: task must not be nil", ErrInvalidArgument)
	// ErrAlreadyStarted is returned by Start when the workers are already running.
	ErrAlreadyStarted = errors.New("thread pool already started")
)

// detectThreads resolves the worker count for a pool created with zero threads.
// A misbehaving provider is treated like an absent one.
func detectThreads(p MaxCoresProvider) int {
	if isNil(p) {
		return cpu.DetectThreads(0, false)
	}
	n, ok := p.MaxCores()
	return cpu.DetectThreads(n, ok)
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// RunAll schedules every task on a new pool over s and blocks until they have all run
// or one of them failed. It returns the first task error.
//
// Example:
//
//	err := RunAll(NewLargestCostScheduler(), tasks, WithThreads(4))
func RunAll(s ThreadScheduler, tasks []Task, opts ...ThreadPoolOption) error {
	p, err := NewThreadPool(s, opts...)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		if err := p.Schedule(t, false); err != nil {
			return err
		}
	}
	return p.JoinAll()
}
