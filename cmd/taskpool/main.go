// Command taskpool runs a synthetic, cost-weighted workload on a thread pool and prints
// a summary of the run.
//
//	taskpool -tasks 500 -scheduler largest_cost -threads 4
//	taskpool -config taskpool.toml -fail-at 42
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utkarsh5026/taskpool/config"
	promexport "github.com/utkarsh5026/taskpool/observability/prometheus"
	"github.com/utkarsh5026/taskpool/pool"
	"github.com/utkarsh5026/taskpool/progress"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

type options struct {
	tasks       int
	threads     int
	scheduler   string
	configPath  string
	failAt      int
	wait        time.Duration
	unit        time.Duration
	rate        float64
	noProgress  bool
	verbose     bool
	metricsAddr string
}

// runResult is what the summary table shows.
type runResult struct {
	strategy     pool.StrategyType
	threads      int
	scheduled    int
	completed    int64
	totalCost    float64
	costExecuted float64
	elapsed      time.Duration
	err          error
}

func parseFlags() options {
	var o options
	flag.IntVar(&o.tasks, "tasks", 200, "Number of synthetic tasks to schedule")
	flag.IntVar(&o.threads, "threads", 0, "Worker threads (0 = physical cores, bounded by max_cores)")
	flag.StringVar(&o.scheduler, "scheduler", "", "Scheduler: fifo, lifo, largest_cost or mutexes (overrides config)")
	flag.StringVar(&o.configPath, "config", "", "Path to a TOML config file")
	flag.IntVar(&o.failAt, "fail-at", -1, "Index of a task that fails (-1 = none)")
	flag.DurationVar(&o.wait, "wait", -1, "Idle wait for workers while tasks are fed in (-1 = use config)")
	flag.DurationVar(&o.unit, "unit", 50*time.Microsecond, "Work per unit of task cost")
	flag.Float64Var(&o.rate, "rate", 0, "Max task starts per second (0 = unlimited)")
	flag.BoolVar(&o.noProgress, "no-progress", false, "Disable the progress bar")
	flag.BoolVar(&o.verbose, "v", false, "Log pool events to stderr")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		fatal(err)
	}
	if o.scheduler != "" {
		cfg.MultiThreaded.Scheduler = o.scheduler
	}
	if o.wait >= 0 {
		cfg.MultiThreaded.Wait = o.wait.String()
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	res, err := run(o, cfg)
	if err != nil {
		fatal(err)
	}

	printSummary(res)
	if res.err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func run(o options, cfg *config.Config) (runResult, error) {
	strategy, err := cfg.Strategy()
	if err != nil {
		return runResult{}, err
	}
	wait, err := cfg.WaitDuration()
	if err != nil {
		return runResult{}, err
	}
	scheduler, err := pool.NewScheduler(strategy)
	if err != nil {
		return runResult{}, err
	}

	var completed atomic.Int64
	reporters := []pool.Progress{progress.Func(func() { completed.Add(1) })}

	var bar *progress.Bar
	if !o.noProgress {
		bar = progress.NewBar(os.Stderr, o.tasks, fmt.Sprintf("Running %s", strategy))
		reporters = append(reporters, bar)
	}

	opts := []pool.ThreadPoolOption{
		pool.WithName("taskpool"),
		pool.WithThreads(o.threads),
		pool.WithMaxCores(cfg),
		pool.WithProgress(fanOut(reporters)),
	}
	if o.verbose {
		opts = append(opts, pool.WithLogger(pool.NewDefaultLogger(log.New(os.Stderr, "", log.LstdFlags))))
	}
	if o.rate > 0 {
		opts = append(opts, pool.WithRateLimit(o.rate, 1))
	}

	var poller *promexport.SnapshotPoller
	if o.metricsAddr != "" {
		reg := prom.NewRegistry()
		exporter, err := promexport.NewMetricsExporter("taskpool", reg, promexport.ExporterOptions{})
		if err != nil {
			return runResult{}, err
		}
		poller, err = promexport.NewSnapshotPoller(reg, time.Second)
		if err != nil {
			return runResult{}, err
		}
		opts = append(opts, pool.WithMetrics(exporter))
		go serveMetrics(o.metricsAddr, reg)
	}

	p, err := pool.NewThreadPool(scheduler, opts...)
	if err != nil {
		return runResult{}, err
	}
	if poller != nil {
		poller.AddPool(p.Name(), p)
		poller.Start(context.Background())
		defer poller.Stop()
	}

	tasks := buildWorkload(o.tasks, o.failAt, o.unit)

	start := time.Now()
	if wait > 0 {
		// Feed tasks while the workers are already running.
		if err := p.Start(wait); err != nil {
			return runResult{}, err
		}
	}
	for _, t := range tasks {
		if err := p.Schedule(t, false); err != nil {
			return runResult{}, err
		}
	}
	runErr := p.JoinAll()
	elapsed := time.Since(start)

	res := runResult{
		strategy:     strategy,
		threads:      p.NumThreads(),
		scheduled:    len(tasks),
		completed:    completed.Load(),
		totalCost:    scheduler.TotalCost(),
		costExecuted: scheduler.CostExecuted(),
		elapsed:      elapsed,
		err:          runErr,
	}

	// Close finishes the progress bar; the run error it repeats is already in res.
	if err := p.Close(); err != nil && !errors.Is(err, runErr) {
		_, _ = yellow.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}
	return res, nil
}

func serveMetrics(addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		_, _ = red.Fprintf(os.Stderr, "metrics server: %v\n", err)
	}
}

func fatal(err error) {
	_, _ = red.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(2)
}
