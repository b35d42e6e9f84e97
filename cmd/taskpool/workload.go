package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/utkarsh5026/taskpool/pool"
)

// maxTaskCost bounds the synthetic cost of a task.
const maxTaskCost = 100

// taskCost spreads costs over [1, maxTaskCost] deterministically so runs are comparable
// across schedulers.
func taskCost(i int) float64 {
	return float64((i*7919)%maxTaskCost + 1)
}

// buildWorkload creates n tasks that each busy-wait cost*unit. The task at failAt
// returns an error instead; a negative failAt disables failures.
func buildWorkload(n, failAt int, unit time.Duration) []pool.Task {
	tasks := make([]pool.Task, 0, n)
	for i := range n {
		cost := taskCost(i)
		work := time.Duration(cost) * unit

		if i == failAt {
			tasks = append(tasks, pool.NewTask(cost, func() error {
				spin(work)
				return fmt.Errorf("task %d: %w", i, errSynthetic)
			}))
			continue
		}
		tasks = append(tasks, pool.NewTask(cost, func() error {
			spin(work)
			return nil
		}))
	}
	return tasks
}

var errSynthetic = errors.New("synthetic failure")

// spin burns CPU for d so tasks actually occupy their worker.
func spin(d time.Duration) {
	deadline := time.Now().Add(d)
	x := 0
	for time.Now().Before(deadline) {
		x++
	}
	_ = x
}

// multiProgress forwards every report to several reporters.
type multiProgress struct {
	reporters []pool.Progress
}

func fanOut(reporters []pool.Progress) *multiProgress {
	return &multiProgress{reporters: reporters}
}

func (m *multiProgress) Report() {
	for _, r := range m.reporters {
		r.Report()
	}
}

// Close closes every reporter that is an io.Closer.
func (m *multiProgress) Close() error {
	var errs []error
	for _, r := range m.reporters {
		if c, ok := r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
