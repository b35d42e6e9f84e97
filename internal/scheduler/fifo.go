package scheduler

import "github.com/utkarsh5026/taskpool/internal/types"

// fifoQueue is a growable ring buffer. Capacity is always a power of two so the
// wrap-around is a mask instead of a modulo.
type fifoQueue struct {
	ring  []types.Task
	head  int
	count int
}

func newFIFOQueue(capacity int) *fifoQueue {
	return &fifoQueue{ring: make([]types.Task, nextPowerOfTwo(capacity))}
}

func (q *fifoQueue) mask() int {
	return len(q.ring) - 1
}

func (q *fifoQueue) push(t types.Task) {
	if q.count == len(q.ring) {
		q.grow()
	}
	q.ring[(q.head+q.count)&q.mask()] = t
	q.count++
}

func (q *fifoQueue) pop(int) types.Task {
	if q.count == 0 {
		return nil
	}
	t := q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) & q.mask()
	q.count--
	return t
}

func (q *fifoQueue) len() int {
	return q.count
}

func (q *fifoQueue) clear() int {
	n := q.count
	clear(q.ring)
	q.head = 0
	q.count = 0
	return n
}

func (q *fifoQueue) finished(types.Task) {}

func (q *fifoQueue) foreach(fn func(types.Task)) {
	for i := range q.count {
		fn(q.ring[(q.head+i)&q.mask()])
	}
}

// grow doubles the ring and unrolls the pending tasks to the front of the new buffer.
func (q *fifoQueue) grow() {
	next := make([]types.Task, len(q.ring)*2)
	for i := range q.count {
		next[i] = q.ring[(q.head+i)&q.mask()]
	}
	q.ring = next
	q.head = 0
}
