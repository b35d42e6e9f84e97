package benchmarks

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/utkarsh5026/taskpool/pool"
)

// =============================================================================
// Scheduler Throughput
// =============================================================================

// BenchmarkScheduler_PushPop measures raw queue cost without any workers
func BenchmarkScheduler_PushPop(b *testing.B) {
	runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
		sched := s.scheduler()
		tasks := make([]pool.Task, 1024)
		for i := range tasks {
			tasks[i] = pool.NewTask(float64(i%17), nil)
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			t := tasks[i%len(tasks)]
			sched.Push(t)
			if got := sched.Pop(0); got != nil {
				sched.Finished(got, 0)
			}
		}
	})
}

// BenchmarkScheduler_Contended pushes and pops from many goroutines at once
func BenchmarkScheduler_Contended(b *testing.B) {
	runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
		sched := s.scheduler()
		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				sched.Push(pool.NewTask(1, nil))
				if got := sched.Pop(0); got != nil {
					sched.Finished(got, 0)
				}
			}
		})
	})
}

// =============================================================================
// Thread Pool Batches
// =============================================================================

// BenchmarkThreadPool_CPUBound runs a uniform CPU-bound batch on every scheduler
func BenchmarkThreadPool_CPUBound(b *testing.B) {
	const taskCount = 2000
	costs := make([]int, taskCount)
	for i := range costs {
		costs[i] = 1000
	}

	for _, threads := range []int{1, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
				for i := 0; i < b.N; i++ {
					runBatch(b, s.scheduler(), threads, costs)
				}
				b.StopTimer()

				nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
				b.ReportMetric(float64(taskCount)/(nsPerOp/1e9), "tasks/sec")
			})
		})
	}
}

// BenchmarkThreadPool_SkewedCost shows the tail effect of a few expensive tasks:
// LargestCost starts them first, FIFO/LIFO leave them wherever they were pushed
func BenchmarkThreadPool_SkewedCost(b *testing.B) {
	costs := skewedCosts(500)
	runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
		for i := 0; i < b.N; i++ {
			runBatch(b, s.scheduler(), 4, costs)
		}
	})
}

// BenchmarkThreadPool_MutexGroups runs tasks split across a few shared mutexes
func BenchmarkThreadPool_MutexGroups(b *testing.B) {
	const groups = 4
	runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
		mus := make([]sync.Mutex, groups)
		for i := 0; i < b.N; i++ {
			p, err := pool.NewThreadPool(s.scheduler(), pool.WithThreads(8))
			if err != nil {
				b.Fatal(err)
			}
			for j := range 400 {
				work := cpuBoundTask(500)
				var t pool.Task = work
				if j%2 == 0 {
					t = pool.NewMutexTask(work.Cost(), &mus[j%groups], work.Run)
				}
				_ = p.Schedule(t, false)
			}
			if err := p.JoinAll(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkThreadPool_Latency reports scheduling latency percentiles: the delay
// between Schedule and the task starting on a waiting worker
func BenchmarkThreadPool_Latency(b *testing.B) {
	runStrategyBenchmark(b, func(b *testing.B, s strategyConfig) {
		latencies := make([]time.Duration, 0, b.N)
		var mu sync.Mutex

		p, err := pool.NewThreadPool(s.scheduler(), pool.WithThreads(4))
		if err != nil {
			b.Fatal(err)
		}
		if err := p.Start(time.Minute); err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			queued := time.Now()
			_ = p.Schedule(pool.NewTask(1, func() error {
				d := time.Since(queued)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
				return nil
			}), false)
		}
		if err := p.JoinAll(); err != nil {
			b.Fatal(err)
		}
		b.StopTimer()

		mu.Lock()
		defer mu.Unlock()
		b.ReportMetric(float64(percentile(latencies, 0.50).Nanoseconds()), "p50-ns")
		b.ReportMetric(float64(percentile(latencies, 0.95).Nanoseconds()), "p95-ns")
		b.ReportMetric(float64(percentile(latencies, 0.99).Nanoseconds()), "p99-ns")
	})
}
