package scheduler

import (
	"sync"

	"github.com/utkarsh5026/taskpool/internal/types"
)

// Test helpers

// labelTask is a task carrying an identifying label for order assertions.
type labelTask struct {
	label string
	cost  float64
	mu    *sync.Mutex
}

func (t *labelTask) Cost() float64      { return t.cost }
func (t *labelTask) Run() error         { return nil }
func (t *labelTask) Mutex() *sync.Mutex { return t.mu }

func newLabelTask(label string, cost float64) *labelTask {
	return &labelTask{label: label, cost: cost}
}

// drain pops every task from s and returns their labels in pop order.
func drain(s ThreadScheduler) []string {
	var labels []string
	for {
		t := s.Pop(0)
		if t == nil {
			return labels
		}
		labels = append(labels, t.(*labelTask).label)
		s.Finished(t, 0)
	}
}

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ types.MutexHolder = (*labelTask)(nil)
