package progress

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCounter(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		reports int
		want    float64
	}{
		{name: "empty", total: 4, reports: 0, want: 0},
		{name: "half", total: 4, reports: 2, want: 0.5},
		{name: "complete", total: 4, reports: 4, want: 1},
		{name: "clamped", total: 4, reports: 6, want: 1},
		{name: "no total", total: 0, reports: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCounter(tt.total)
			for range tt.reports {
				c.Report()
			}
			if got := c.Fraction(); got != tt.want {
				t.Errorf("expected fraction %v, got %v", tt.want, got)
			}
			if c.Done() != int64(tt.reports) {
				t.Errorf("expected %d done, got %d", tt.reports, c.Done())
			}
		})
	}
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter(1000)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.Report()
			}
		}()
	}
	wg.Wait()

	if c.Done() != 1000 {
		t.Errorf("expected 1000, got %d", c.Done())
	}
}

func TestFunc(t *testing.T) {
	var n atomic.Int32
	var r interface{ Report() } = Func(func() { n.Add(1) })
	r.Report()
	r.Report()
	if n.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", n.Load())
	}
}

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf, 20, "tasks")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				b.Report()
			}
		}()
	}
	wg.Wait()

	if b.Current() != 20 {
		t.Errorf("expected 20, got %d", b.Current())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	b.Report()
	if b.Current() != 20 {
		t.Errorf("reports after Close must be ignored, got %d", b.Current())
	}
}
