package scheduler

import (
	"container/heap"

	"github.com/utkarsh5026/taskpool/internal/types"
)

// costItem pairs a task with its cost and push sequence. The cost is read once at push
// time, which also keeps heap ordering stable if a task misbehaves and changes it.
type costItem struct {
	task types.Task
	cost float64
	seq  uint64
}

// costHeap is a max-heap on cost. Equal costs are ordered by push sequence so the
// policy is stable.
type costHeap []costItem

func (h costHeap) Len() int {
	return len(h)
}

func (h costHeap) Less(i, j int) bool {
	return before(h[i], h[j])
}

func (h costHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push is intended to meet the heap.Interface contract.
func (h *costHeap) Push(x any) {
	item, ok := x.(costItem)
	if !ok {
		panic("costHeap.Push: invalid type assertion")
	}
	*h = append(*h, item)
}

// Pop is intended to meet the heap.Interface contract.
func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = costItem{}
	*h = old[:n-1]
	return item
}

// peek returns the highest priority item without removing it.
func (h costHeap) peek() (costItem, bool) {
	if len(h) == 0 {
		return costItem{}, false
	}
	return h[0], true
}

func (h *costHeap) popItem() costItem {
	item, ok := heap.Pop(h).(costItem)
	if !ok {
		panic("costHeap.popItem: invalid type assertion")
	}
	return item
}

// before reports whether a should be handed out ahead of b.
func before(a, b costItem) bool {
	if a.cost != b.cost {
		return a.cost > b.cost
	}
	return a.seq < b.seq
}

// costQueue hands out the largest-cost task first.
type costQueue struct {
	h   costHeap
	seq uint64
}

func newCostQueue() *costQueue {
	return &costQueue{h: make(costHeap, 0, defaultQueueCapacity)}
}

func (q *costQueue) push(t types.Task) {
	q.seq++
	heap.Push(&q.h, costItem{task: t, cost: sanitizeCost(t.Cost()), seq: q.seq})
}

func (q *costQueue) pop(int) types.Task {
	if q.h.Len() == 0 {
		return nil
	}
	return q.h.popItem().task
}

func (q *costQueue) len() int {
	return q.h.Len()
}

func (q *costQueue) clear() int {
	n := q.h.Len()
	clear(q.h)
	q.h = q.h[:0]
	return n
}

func (q *costQueue) finished(types.Task) {}

func (q *costQueue) foreach(fn func(types.Task)) {
	for _, item := range q.h {
		fn(item.task)
	}
}
