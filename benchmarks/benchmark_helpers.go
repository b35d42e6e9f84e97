package benchmarks

import (
	"math"
	"sort"
	"testing"
	"time"

	"github.com/utkarsh5026/taskpool/pool"
)

// strategyConfig defines a benchmark configuration for a scheduling strategy
type strategyConfig struct {
	name      string
	scheduler func() pool.ThreadScheduler
}

// getAllStrategies returns every built-in scheduler
func getAllStrategies() []strategyConfig {
	return []strategyConfig{
		{name: "FIFO", scheduler: pool.NewFIFOScheduler},
		{name: "LIFO", scheduler: pool.NewLIFOScheduler},
		{name: "LargestCost", scheduler: pool.NewLargestCostScheduler},
		{name: "Mutexes", scheduler: pool.NewMutexesScheduler},
	}
}

// runStrategyBenchmark runs a benchmark function for all strategies
func runStrategyBenchmark(b *testing.B, benchFunc func(b *testing.B, s strategyConfig)) {
	for _, strategy := range getAllStrategies() {
		b.Run(strategy.name, func(b *testing.B) {
			benchFunc(b, strategy)
		})
	}
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundTask returns a task doing iterations of arithmetic, with cost equal to the
// iteration count.
func cpuBoundTask(iterations int) pool.Task {
	return pool.NewTask(float64(iterations), func() error {
		result := 0
		for i := range iterations {
			result += i * iterations
		}
		sink = result
		return nil
	})
}

// sink keeps the compiler from discarding benchmark work.
var sink int

// skewedCosts returns n costs where a few tasks dominate the total, the case where
// handing out large tasks first shortens the tail.
func skewedCosts(n int) []int {
	costs := make([]int, n)
	for i := range costs {
		costs[i] = 200
		if i%50 == 49 {
			costs[i] = 20_000
		}
	}
	return costs
}

// runBatch schedules one task per cost and joins.
func runBatch(b *testing.B, s pool.ThreadScheduler, threads int, costs []int) {
	b.Helper()
	p, err := pool.NewThreadPool(s, pool.WithThreads(threads))
	if err != nil {
		b.Fatal(err)
	}
	for _, c := range costs {
		if err := p.Schedule(cpuBoundTask(c), false); err != nil {
			b.Fatal(err)
		}
	}
	if err := p.JoinAll(); err != nil {
		b.Fatal(err)
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// nearest-rank: p=0.50 over 100 samples is index 49
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
