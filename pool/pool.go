package pool

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ThreadPool runs tasks from one ThreadScheduler on a fixed number of worker threads.
//
// The usual pattern is to schedule a batch and join:
//
//	p, err := NewThreadPool(NewLargestCostScheduler(), WithThreads(4))
//	if err != nil {
//	    return err
//	}
//	for _, s := range spectra {
//	    _ = p.Schedule(NewTask(float64(len(s)), func() error { return process(s) }), false)
//	}
//	if err := p.JoinAll(); err != nil {
//	    return err // first task failure
//	}
//
// A pool can also be started early with a wait budget so workers idle for new tasks
// while a producer feeds them in.
type ThreadPool struct {
	conf       *poolConfig
	scheduler  ThreadScheduler
	numThreads int

	joinMu    sync.Mutex
	mu        sync.Mutex
	started   bool
	group     *errgroup.Group
	runnables []*runnable
	cancel    context.CancelFunc
}

// NewThreadPool creates a pool that owns s. The scheduler must not be nil.
//
// With no WithThreads option (or WithThreads(0)) the thread count is the number of
// physical cores, bounded by WithMaxCores if given.
func NewThreadPool(s ThreadScheduler, opts ...ThreadPoolOption) (*ThreadPool, error) {
	if isNil(s) {
		return nil, ErrNilScheduler
	}

	cfg := createConfig(opts...)
	n := cfg.numThreads
	if n == 0 {
		n = detectThreads(cfg.maxCores)
	}

	cfg.logger.Debug("thread pool created", F("pool", cfg.name), F("threads", n))
	return &ThreadPool{
		conf:       cfg,
		scheduler:  s,
		numThreads: n,
	}, nil
}

// NumThreads returns the number of workers Start spawns.
func (p *ThreadPool) NumThreads() int {
	return p.numThreads
}

// Scheduler returns the scheduler owned by the pool.
func (p *ThreadPool) Scheduler() ThreadScheduler {
	return p.scheduler
}

// Name returns the label used in logs and metrics.
func (p *ThreadPool) Name() string {
	return p.conf.name
}

// Started reports whether workers are running, i.e. Start succeeded and the matching
// JoinAll has not yet returned.
func (p *ThreadPool) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Schedule pushes t onto the scheduler. When startNow is set and the pool is not
// running, it is started with no wait budget.
func (p *ThreadPool) Schedule(t Task, startNow bool) error {
	if isNil(t) {
		return ErrNilTask
	}
	p.scheduler.Push(t)

	if !startNow {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	return p.startLocked(0)
}

// Start spawns NumThreads workers. Each worker exits once the scheduler is empty and it
// has been idle for wait (0 exits immediately), or once the scheduler is aborted.
// Start fails with ErrAlreadyStarted while workers are running.
func (p *ThreadPool) Start(wait time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startLocked(wait)
}

func (p *ThreadPool) startLocked(wait time.Duration) error {
	if p.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &errgroup.Group{}
	runnables := make([]*runnable, 0, p.numThreads)

	for i := range p.numThreads {
		r := newRunnable(ctx, cancel, i, p.scheduler, p.conf, wait)
		runnables = append(runnables, r)
		g.Go(func() error {
			r.run()
			return nil
		})
	}

	p.group = g
	p.runnables = runnables
	p.cancel = cancel
	p.started = true

	debugLog("pool %s started %d workers (wait %v)", p.conf.name, p.numThreads, wait)
	p.conf.logger.Debug("thread pool started",
		F("pool", p.conf.name), F("threads", p.numThreads), F("wait", wait))
	return nil
}

// JoinAll blocks until every worker has exited and returns the scheduler's recorded
// abort error, if any. If the pool was never started it is started first, so scheduling
// a batch and calling JoinAll is enough.
//
// Workers are told to stop waiting for new tasks, so JoinAll drains what is queued
// and returns without sitting out the wait budget. Tasks pushed concurrently with
// JoinAll may or may not run.
//
// The abort error is held by the scheduler: calling JoinAll again returns the same
// error until Reset is called.
func (p *ThreadPool) JoinAll() error {
	p.joinMu.Lock()
	defer p.joinMu.Unlock()

	p.mu.Lock()
	if !p.started {
		if err := p.startLocked(0); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	g, runnables, cancel := p.group, p.runnables, p.cancel
	p.mu.Unlock()

	for _, r := range runnables {
		r.ClearWait()
	}
	_ = g.Wait()
	cancel()

	p.mu.Lock()
	p.group = nil
	p.runnables = nil
	p.cancel = nil
	p.started = false
	p.mu.Unlock()

	p.conf.logger.Debug("thread pool joined", F("pool", p.conf.name))

	if p.scheduler.Aborted() {
		err := p.scheduler.Err()
		if err == nil {
			err = ErrAborted
		}
		if d, ok := p.scheduler.(interface{ Dropped() int }); ok && d.Dropped() > 0 {
			p.conf.logger.Info("abandoned pending tasks after abort",
				F("pool", p.conf.name), F("tasks", d.Dropped()))
		}
		return err
	}
	return nil
}

// Reset clears a held abort so the pool can run again. Tasks pushed after the abort
// are kept and run on the next Start or JoinAll.
func (p *ThreadPool) Reset() {
	p.scheduler.Reset()
}

// Close discards every pending task, joins running workers and closes the progress
// reporter if it implements io.Closer. It returns the held abort error, if any, joined
// with the reporter's close error.
func (p *ThreadPool) Close() error {
	dropped := p.scheduler.Clear()
	if dropped > 0 {
		p.conf.logger.Info("discarded pending tasks on close",
			F("pool", p.conf.name), F("tasks", dropped))
	}

	var err error
	if p.Started() {
		err = p.JoinAll()
	} else if p.scheduler.Aborted() {
		err = p.scheduler.Err()
	}

	if c, ok := p.conf.progress.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
