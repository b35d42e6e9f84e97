package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// strategyConfig defines a test configuration for a scheduling strategy
type strategyConfig struct {
	name      string
	scheduler func() ThreadScheduler
	opts      []ThreadPoolOption
}

// getAllStrategies returns every built-in scheduler, each paired with the given options
func getAllStrategies(threads int, additionalOpts ...ThreadPoolOption) []strategyConfig {
	base := []strategyConfig{
		{name: "FIFO", scheduler: NewFIFOScheduler},
		{name: "LIFO", scheduler: NewLIFOScheduler},
		{name: "LargestCost", scheduler: NewLargestCostScheduler},
		{name: "Mutexes", scheduler: NewMutexesScheduler},
	}
	for i := range base {
		base[i].opts = append([]ThreadPoolOption{WithThreads(threads)}, additionalOpts...)
	}
	return base
}

func runStrategyTest(t *testing.T, testFunc func(t *testing.T, s strategyConfig), threads int, additionalOpts ...ThreadPoolOption) {
	for _, strategy := range getAllStrategies(threads, additionalOpts...) {
		t.Run(strategy.name, func(t *testing.T) {
			testFunc(t, strategy)
		})
	}
}

func newTestPool(t *testing.T, s strategyConfig, extra ...ThreadPoolOption) *ThreadPool {
	t.Helper()
	p, err := NewThreadPool(s.scheduler(), append(s.opts, extra...)...)
	if err != nil {
		t.Fatalf("NewThreadPool: %v", err)
	}
	return p
}

// countingProgress counts Report calls.
type countingProgress struct {
	n      atomic.Int64
	closed atomic.Bool
}

func (c *countingProgress) Report()      { c.n.Add(1) }
func (c *countingProgress) Close() error { c.closed.Store(true); return nil }

// recordingLogger keeps every message by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: make(map[string][]string)}
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[level] = append(l.entries[level], msg)
}

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[level])
}

func (l *recordingLogger) Debug(msg string, _ ...Field) { l.add("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...Field)  { l.add("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...Field)  { l.add("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...Field) { l.add("error", msg) }

// recordingMetrics counts every metric call.
type recordingMetrics struct {
	durations atomic.Int64
	failures  atomic.Int64
	discarded atomic.Int64
	depths    atomic.Int64
}

func (m *recordingMetrics) RecordTaskDuration(string, time.Duration) { m.durations.Add(1) }
func (m *recordingMetrics) RecordTaskFailure(string)                 { m.failures.Add(1) }
func (m *recordingMetrics) RecordDiscardedError(string)              { m.discarded.Add(1) }
func (m *recordingMetrics) RecordQueueDepth(string, int)             { m.depths.Add(1) }

// joinWithTimeout fails the test if JoinAll does not return within d.
func joinWithTimeout(t *testing.T, p *ThreadPool, d time.Duration) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- p.JoinAll() }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
		t.Fatalf("JoinAll did not return within %v", d)
		return nil
	}
}
