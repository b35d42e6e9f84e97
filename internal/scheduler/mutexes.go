package scheduler

import (
	"container/heap"
	"sync"

	"github.com/utkarsh5026/taskpool/internal/types"
)

// mutexQueue keeps one cost heap per mutex. Tasks without a mutex share the nil group,
// which is never busy.
//
// pop picks the best head among groups whose mutex is not held by a running task. If
// every non-empty group is busy it still hands out the best head overall; the worker
// then blocks on the mutex instead of spinning on an empty pop.
type mutexQueue struct {
	groups map[*sync.Mutex]*costHeap
	busy   map[*sync.Mutex]int
	count  int
	seq    uint64
}

func newMutexQueue() *mutexQueue {
	return &mutexQueue{
		groups: make(map[*sync.Mutex]*costHeap),
		busy:   make(map[*sync.Mutex]int),
	}
}

func (q *mutexQueue) push(t types.Task) {
	mu := types.MutexOf(t)
	h, ok := q.groups[mu]
	if !ok {
		h = &costHeap{}
		q.groups[mu] = h
	}

	q.seq++
	heap.Push(h, costItem{task: t, cost: sanitizeCost(t.Cost()), seq: q.seq})
	q.count++
}

func (q *mutexQueue) pop(int) types.Task {
	if q.count == 0 {
		return nil
	}

	mu, ok := q.best(true)
	if !ok {
		mu, ok = q.best(false)
	}
	if !ok {
		return nil
	}

	h := q.groups[mu]
	item := h.popItem()
	if h.Len() == 0 {
		delete(q.groups, mu)
	}
	q.count--

	if mu != nil {
		q.busy[mu]++
	}
	return item.task
}

// best returns the group whose head should run next. When freeOnly is set, groups whose
// mutex is held by a running task are skipped.
func (q *mutexQueue) best(freeOnly bool) (*sync.Mutex, bool) {
	var (
		chosen *sync.Mutex
		top    costItem
		found  bool
	)

	for mu, h := range q.groups {
		if freeOnly && mu != nil && q.busy[mu] > 0 {
			continue
		}
		head, ok := h.peek()
		if !ok {
			continue
		}
		if !found || before(head, top) {
			chosen, top, found = mu, head, true
		}
	}
	return chosen, found
}

func (q *mutexQueue) len() int {
	return q.count
}

func (q *mutexQueue) clear() int {
	n := q.count
	clear(q.groups)
	q.count = 0
	return n
}

func (q *mutexQueue) finished(t types.Task) {
	mu := types.MutexOf(t)
	if mu == nil {
		return
	}
	if q.busy[mu] <= 1 {
		delete(q.busy, mu)
		return
	}
	q.busy[mu]--
}

func (q *mutexQueue) foreach(fn func(types.Task)) {
	for _, h := range q.groups {
		for _, item := range *h {
			fn(item.task)
		}
	}
}
