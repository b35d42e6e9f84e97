package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskpool/internal/algorithms"
	"github.com/utkarsh5026/taskpool/internal/cpu"
	"github.com/utkarsh5026/taskpool/internal/types"
)

// blockedPollDelay caps the sleep of a worker whose scheduler reports pending tasks but
// has none it can hand out right now.
const blockedPollDelay = time.Millisecond

// runnable is the loop body of one worker. The goroutine running it is owned by the
// pool's errgroup; the runnable itself only holds loop state.
type runnable struct {
	id        int
	scheduler ThreadScheduler
	conf      *poolConfig
	wait      time.Duration
	backoff   algorithms.BackoffStrategy

	ctx    context.Context
	cancel context.CancelFunc

	keepWaiting atomic.Bool
	stopWaiting chan struct{}
	clearOnce   sync.Once
}

func newRunnable(
	ctx context.Context,
	cancel context.CancelFunc,
	id int,
	s ThreadScheduler,
	conf *poolConfig,
	wait time.Duration,
) *runnable {
	r := &runnable{
		id:        id,
		scheduler: s,
		conf:      conf,
		wait:      wait,
		backoff: algorithms.NewBackoffStrategy(
			conf.backoffType, conf.backoffInitial, conf.backoffMax, conf.backoffJitter,
		),
		ctx:         ctx,
		cancel:      cancel,
		stopWaiting: make(chan struct{}),
	}
	r.keepWaiting.Store(wait > 0)
	return r
}

// ClearWait makes the runnable exit as soon as the scheduler is empty instead of
// waiting out its budget. A runnable currently sleeping is woken immediately.
func (r *runnable) ClearWait() {
	r.clearOnce.Do(func() {
		r.keepWaiting.Store(false)
		close(r.stopWaiting)
	})
}

// run pulls tasks until the scheduler is aborted, or it is empty and the idle budget is
// spent or cleared.
func (r *runnable) run() {
	if r.conf.affinity {
		defer cpu.SetupWorkerAffinity(r.id)()
	}

	var (
		idleSince time.Time
		misses    int
	)

	for {
		if r.scheduler.Aborted() {
			return
		}

		if t := r.scheduler.Pop(r.id); t != nil {
			idleSince = time.Time{}
			misses = 0
			r.backoff.Reset()

			if err := r.execute(t); err != nil {
				return
			}
			continue
		}

		if r.scheduler.Aborted() {
			return
		}

		// Pending tasks exist but none can be handed out to this worker yet.
		if r.scheduler.Size() > 0 {
			time.Sleep(min(r.backoff.NextDelay(misses), blockedPollDelay))
			misses++
			continue
		}

		if !r.keepWaiting.Load() {
			return
		}
		if idleSince.IsZero() {
			idleSince = time.Now()
		}
		remaining := r.wait - time.Since(idleSince)
		if remaining <= 0 {
			return
		}

		r.pause(min(r.backoff.NextDelay(misses), remaining))
		misses++
	}
}

// pause sleeps for d unless the wait is cleared or the run is cancelled first.
func (r *runnable) pause(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-r.stopWaiting:
	case <-r.ctx.Done():
	}
}

// execute runs one task. A non-nil return means the pool has been aborted and this
// worker must exit. A panic in a hook or in the progress reporter fails the task the
// same way a panicking task does.
func (r *runnable) execute(t Task) error {
	if r.conf.rateLimiter != nil {
		if err := r.conf.rateLimiter.Wait(r.ctx); err != nil {
			// The run was cancelled by another worker's failure; t is abandoned.
			r.release(t)
			r.scheduler.Abort(err)
			return err
		}
	}

	if mu := types.MutexOf(t); mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	var (
		err     error
		elapsed time.Duration
	)
	if r.conf.beforeTaskStart != nil {
		err = types.Guard(func() { r.conf.beforeTaskStart(t) })
	}
	if err == nil {
		start := time.Now()
		err = types.Execute(t)
		elapsed = time.Since(start)
	}

	if r.conf.onTaskEnd != nil {
		if hookErr := types.Guard(func() { r.conf.onTaskEnd(t, err) }); err == nil {
			err = hookErr
		}
	}

	r.scheduler.Finished(t, r.id)
	r.record(elapsed, err)

	if err == nil && r.conf.progress != nil {
		err = types.Guard(r.conf.progress.Report)
	}

	if err != nil {
		r.fail(err)
		return err
	}
	return nil
}

// release hands a popped task back to the scheduler's bookkeeping without running it.
func (r *runnable) release(t Task) {
	if s, ok := r.scheduler.(interface{ Release(Task, int) }); ok {
		s.Release(t, r.id)
		return
	}
	r.scheduler.Finished(t, r.id)
}

// fail records err on the scheduler. Only the first failure of a run is kept; later ones
// are logged and dropped.
func (r *runnable) fail(err error) {
	name := r.conf.name
	if r.scheduler.Abort(err) {
		r.conf.logger.Error("task failed, aborting pool",
			F("pool", name), F("worker", r.id), F("error", err))
	} else {
		r.conf.logger.Warn("discarding task error, pool already aborted",
			F("pool", name), F("worker", r.id), F("error", err))
		if r.conf.metrics != nil {
			r.conf.metrics.RecordDiscardedError(name)
		}
	}
	r.cancel()
}

func (r *runnable) record(elapsed time.Duration, err error) {
	m := r.conf.metrics
	if m == nil {
		return
	}
	m.RecordTaskDuration(r.conf.name, elapsed)
	if err != nil {
		m.RecordTaskFailure(r.conf.name)
	}
	m.RecordQueueDepth(r.conf.name, r.scheduler.Size())
}
