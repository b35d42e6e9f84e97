package scheduler

import "github.com/utkarsh5026/taskpool/internal/types"

type lifoQueue struct {
	stack []types.Task
}

func newLIFOQueue() *lifoQueue {
	return &lifoQueue{stack: make([]types.Task, 0, defaultQueueCapacity)}
}

func (q *lifoQueue) push(t types.Task) {
	q.stack = append(q.stack, t)
}

func (q *lifoQueue) pop(int) types.Task {
	n := len(q.stack)
	if n == 0 {
		return nil
	}
	t := q.stack[n-1]
	q.stack[n-1] = nil
	q.stack = q.stack[:n-1]
	return t
}

func (q *lifoQueue) len() int {
	return len(q.stack)
}

func (q *lifoQueue) clear() int {
	n := len(q.stack)
	clear(q.stack)
	q.stack = q.stack[:0]
	return n
}

func (q *lifoQueue) finished(types.Task) {}

func (q *lifoQueue) foreach(fn func(types.Task)) {
	for _, t := range q.stack {
		fn(t)
	}
}
