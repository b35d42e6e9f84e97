package scheduler

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/utkarsh5026/taskpool/internal/types"
)

func TestScheduler_PopOrder(t *testing.T) {
	tests := []struct {
		name  string
		sched *Scheduler
		costs []float64
		want  []string
	}{
		{
			name:  "fifo keeps push order",
			sched: NewFIFO(),
			costs: []float64{1, 1, 1},
			want:  []string{"0", "1", "2"},
		},
		{
			name:  "fifo ignores cost",
			sched: NewFIFO(),
			costs: []float64{1, 9, 3},
			want:  []string{"0", "1", "2"},
		},
		{
			name:  "lifo reverses push order",
			sched: NewLIFO(),
			costs: []float64{1, 9, 3},
			want:  []string{"2", "1", "0"},
		},
		{
			name:  "largest cost first",
			sched: NewLargestCost(),
			costs: []float64{5, 1, 3},
			want:  []string{"0", "2", "1"},
		},
		{
			name:  "largest cost ties keep insertion order",
			sched: NewLargestCost(),
			costs: []float64{2, 7, 2, 7, 2},
			want:  []string{"1", "3", "0", "2", "4"},
		},
		{
			name:  "mutexes without mutex behaves like largest cost",
			sched: NewMutexes(),
			costs: []float64{5, 1, 3},
			want:  []string{"0", "2", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, c := range tt.costs {
				tt.sched.Push(newLabelTask(string(rune('0'+i)), c))
			}
			if got := tt.sched.Size(); got != len(tt.costs) {
				t.Fatalf("expected size %d, got %d", len(tt.costs), got)
			}

			got := drain(tt.sched)
			if !equalLabels(got, tt.want) {
				t.Errorf("pop order = %v, want %v", got, tt.want)
			}
			if tt.sched.Size() != 0 {
				t.Errorf("expected empty scheduler, got size %d", tt.sched.Size())
			}
		})
	}
}

func TestScheduler_LargestCostNonIncreasing(t *testing.T) {
	s := NewLargestCost()
	for i := range 200 {
		s.Push(newLabelTask("t", float64((i*7919)%97)))
	}

	prev := math.Inf(1)
	for {
		task := s.Pop(0)
		if task == nil {
			break
		}
		if task.Cost() > prev {
			t.Fatalf("cost %v popped after %v", task.Cost(), prev)
		}
		prev = task.Cost()
	}
}

func TestScheduler_FIFOGrowsPastCapacity(t *testing.T) {
	s := NewFIFO()
	n := defaultQueueCapacity*3 + 5

	// Interleave pushes and pops so the ring wraps before it grows.
	for i := range 10 {
		s.Push(newLabelTask(string(rune('a'+i)), 1))
	}
	for range 5 {
		s.Pop(0)
	}
	for range n {
		s.Push(newLabelTask("x", 1))
	}

	got := drain(s)
	if len(got) != n+5 {
		t.Fatalf("expected %d tasks, got %d", n+5, len(got))
	}
	if !equalLabels(got[:5], []string{"f", "g", "h", "i", "j"}) {
		t.Errorf("unexpected head after wrap: %v", got[:5])
	}
}

func TestScheduler_Abort(t *testing.T) {
	t.Run("first error wins", func(t *testing.T) {
		s := NewFIFO()
		first := errors.New("first")
		second := errors.New("second")

		if !s.Abort(first) {
			t.Error("expected first abort to be recorded")
		}
		if s.Abort(second) {
			t.Error("expected second abort to be dropped")
		}
		if !errors.Is(s.Err(), first) {
			t.Errorf("expected first error, got %v", s.Err())
		}
		if !s.Aborted() {
			t.Error("expected aborted state")
		}
	})

	t.Run("discards pending tasks and stops popping", func(t *testing.T) {
		s := NewLargestCost()
		for i := range 5 {
			s.Push(newLabelTask("t", float64(i)))
		}
		s.Abort(errors.New("fail"))

		if s.Size() != 0 {
			t.Errorf("expected pending tasks to be discarded, size %d", s.Size())
		}
		if s.Dropped() != 5 {
			t.Errorf("expected 5 dropped tasks, got %d", s.Dropped())
		}

		s.Push(newLabelTask("late", 1))
		if task := s.Pop(0); task != nil {
			t.Error("expected nil pop after abort")
		}
	})

	t.Run("nil error records ErrAborted", func(t *testing.T) {
		s := NewFIFO()
		s.Abort(nil)
		if !errors.Is(s.Err(), ErrAborted) {
			t.Errorf("expected ErrAborted, got %v", s.Err())
		}
	})

	t.Run("error is held until reset", func(t *testing.T) {
		s := NewFIFO()
		want := errors.New("held")
		s.Abort(want)

		for range 3 {
			if !errors.Is(s.Err(), want) {
				t.Fatalf("expected held error, got %v", s.Err())
			}
		}

		s.Reset()
		if s.Aborted() || s.Err() != nil {
			t.Error("expected reset to clear the abort")
		}
	})
}

func TestScheduler_CostAccounting(t *testing.T) {
	s := NewFIFO()
	s.Push(newLabelTask("a", 2))
	s.Push(newLabelTask("b", 3))
	s.Push(newLabelTask("nan", math.NaN()))

	if s.TotalCost() != 5 {
		t.Errorf("expected total cost 5, got %v", s.TotalCost())
	}

	drain(s)
	if s.CostExecuted() != 5 {
		t.Errorf("expected executed cost 5, got %v", s.CostExecuted())
	}

	s.Push(newLabelTask("c", 4))
	s.Reset()
	if s.TotalCost() != 4 || s.CostExecuted() != 0 {
		t.Errorf("after reset: total %v executed %v, want 4 and 0", s.TotalCost(), s.CostExecuted())
	}
}

func TestScheduler_PushNil(t *testing.T) {
	s := NewFIFO()
	s.Push(nil)
	if s.Size() != 0 {
		t.Errorf("expected nil push to be ignored, size %d", s.Size())
	}
}

func TestScheduler_ConcurrentPushPop(t *testing.T) {
	for _, strategy := range []StrategyType{StrategyFIFO, StrategyLIFO, StrategyLargestCost, StrategyMutexes} {
		t.Run(strategy.String(), func(t *testing.T) {
			s, err := New(strategy)
			if err != nil {
				t.Fatal(err)
			}

			const producers, perProducer = 4, 250
			seen := make([]atomic.Int32, producers*perProducer)

			var wg sync.WaitGroup
			for p := range producers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range perProducer {
						id := p*perProducer + i
						s.Push(types.NewTask(float64(id%13), func() error {
							seen[id].Add(1)
							return nil
						}))
					}
				}()
			}

			var popped atomic.Int32
			done := make(chan struct{})
			for c := range 4 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						task := s.Pop(c)
						if task == nil {
							select {
							case <-done:
								if s.Size() == 0 {
									return
								}
							default:
							}
							continue
						}
						_ = task.Run()
						s.Finished(task, c)
						if popped.Add(1) == producers*perProducer {
							close(done)
						}
					}
				}()
			}
			wg.Wait()

			for id := range seen {
				if n := seen[id].Load(); n != 1 {
					t.Fatalf("task %d ran %d times", id, n)
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New(StrategyType(42)); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}

	s, err := New(StrategyLargestCost)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if s.Strategy() != StrategyLargestCost {
		t.Errorf("expected largest_cost, got %v", s.Strategy())
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    StrategyType
		wantErr bool
	}{
		{in: "", want: StrategyFIFO},
		{in: "FIFO", want: StrategyFIFO},
		{in: "lifo", want: StrategyLIFO},
		{in: "largest-cost", want: StrategyLargestCost},
		{in: " largest_cost ", want: StrategyLargestCost},
		{in: "mutexes", want: StrategyMutexes},
		{in: "round-robin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("expected ErrUnknownStrategy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
