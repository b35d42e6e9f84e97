// Package progress provides reporters for pool.WithProgress.
//
// Every reporter is safe for concurrent use; pool workers call Report from their own
// goroutines once per completed task.
package progress

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Counter counts completed tasks against an expected total.
type Counter struct {
	total int64
	done  atomic.Int64
}

// NewCounter creates a Counter expecting total tasks. A non-positive total makes
// Fraction report 1 once any task completed.
func NewCounter(total int) *Counter {
	return &Counter{total: int64(total)}
}

// Report records one completed task.
func (c *Counter) Report() {
	c.done.Add(1)
}

// Done returns the number of completed tasks.
func (c *Counter) Done() int64 {
	return c.done.Load()
}

// Fraction returns Done/total, clamped to [0, 1].
func (c *Counter) Fraction() float64 {
	done := c.done.Load()
	if c.total <= 0 {
		if done > 0 {
			return 1
		}
		return 0
	}
	return min(float64(done)/float64(c.total), 1)
}

// Func adapts a plain function to a reporter.
type Func func()

// Report calls f.
func (f Func) Report() {
	f()
}

// Bar renders a terminal progress bar advanced once per completed task.
type Bar struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	closed bool
}

// BarOption customizes the underlying progress bar.
type BarOption = progressbar.Option

// NewBar creates a bar for total tasks written to w (os.Stderr in the CLI).
func NewBar(w io.Writer, total int, description string, opts ...BarOption) *Bar {
	base := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	}
	return &Bar{bar: progressbar.NewOptions(total, append(base, opts...)...)}
}

// Report advances the bar by one task.
func (b *Bar) Report() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	_ = b.bar.Add(1)
}

// Describe replaces the bar's description.
func (b *Bar) Describe(description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar.Describe(description)
}

// Current returns the number of tasks reported so far.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bar.State().CurrentNum
}

// Close finishes the bar. Reports after Close are ignored.
func (b *Bar) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.bar.Finish()
}
