package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/taskpool/pool"
)

// PoolSnapshotProvider is implemented by *pool.ThreadPool.
type PoolSnapshotProvider interface {
	NumThreads() int
	Started() bool
	Scheduler() pool.ThreadScheduler
}

// SnapshotPoller periodically exports thread pool and scheduler state into Prometheus
// gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	pending      *prom.GaugeVec
	totalCost    *prom.GaugeVec
	costExecuted *prom.GaugeVec
	aborted      *prom.GaugeVec
	workers      *prom.GaugeVec
	running      *prom.GaugeVec

	stateMu sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "taskpool",
			Name:      name,
			Help:      help,
		}, []string{"pool"})
	}

	p := &SnapshotPoller{
		interval:     interval,
		pools:        make(map[string]PoolSnapshotProvider),
		pending:      gauge("scheduler_pending", "Pending tasks per scheduler."),
		totalCost:    gauge("scheduler_total_cost", "Summed cost of tasks pushed since the last reset."),
		costExecuted: gauge("scheduler_cost_executed", "Summed cost of tasks run since the last reset."),
		aborted:      gauge("scheduler_aborted", "Scheduler abort state (1=aborted, 0=ok)."),
		workers:      gauge("pool_workers", "Worker count per pool."),
		running:      gauge("pool_running", "Pool running state (1=running, 0=stopped)."),
	}

	var err error
	for _, g := range []**prom.GaugeVec{&p.pending, &p.totalCost, &p.costExecuted, &p.aborted, &p.workers, &p.running} {
		if *g, err = registerCollector(reg, *g); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddPool adds or replaces a pool by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.started {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true
	done := p.done
	p.stateMu.Unlock()

	go p.loop(pollCtx, done)
}

// Stop stops periodic polling and takes one final snapshot; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.started {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	cancel()
	<-done
	p.collectOnce()

	p.stateMu.Lock()
	p.started = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		p.workers.WithLabelValues(name).Set(float64(provider.NumThreads()))
		p.running.WithLabelValues(name).Set(boolGauge(provider.Started()))

		s := provider.Scheduler()
		if s == nil {
			continue
		}
		p.pending.WithLabelValues(name).Set(float64(s.Size()))
		p.totalCost.WithLabelValues(name).Set(s.TotalCost())
		p.costExecuted.WithLabelValues(name).Set(s.CostExecuted())
		p.aborted.WithLabelValues(name).Set(boolGauge(s.Aborted()))
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
