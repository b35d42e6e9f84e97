// Package pool runs independent, cost-weighted tasks on a fixed set of worker threads.
//
// A ThreadPool owns one ThreadScheduler, the thread-safe queue its workers pull from.
// The built-in schedulers differ only in retrieval order:
//
//   - NewFIFOScheduler: push order
//   - NewLIFOScheduler: newest first
//   - NewLargestCostScheduler: most expensive first, ties in push order
//   - NewMutexesScheduler: prefers tasks whose mutex is not held by a running task
//
// # Basic Usage
//
//	p, err := pool.NewThreadPool(pool.NewLargestCostScheduler(), pool.WithThreads(4))
//	if err != nil {
//	    return err
//	}
//	for _, f := range files {
//	    _ = p.Schedule(pool.NewTask(float64(f.Size), func() error {
//	        return convert(f)
//	    }), false)
//	}
//	return p.JoinAll()
//
// # Failure Semantics
//
// The first task error aborts the run: the scheduler records the error, discards the
// pending tasks and stops handing out work. Tasks already running finish normally.
// JoinAll returns that error unmodified, and keeps returning it until Reset is called.
// Errors from tasks that fail after the first are logged and dropped.
//
// A panicking task is reported as a *PanicError carrying the stack trace.
//
// # Waiting For Work
//
// Start(wait) lets workers idle up to wait for new tasks once the scheduler runs dry,
// which suits a producer that feeds the pool incrementally:
//
//	_ = p.Start(500 * time.Millisecond)
//	for item := range incoming {
//	    _ = p.Schedule(newTask(item), false)
//	}
//	err := p.JoinAll() // stops the waiting immediately
//
// # Thread Count
//
// With no WithThreads option the pool uses the number of physical cores, bounded by the
// value a WithMaxCores provider returns.
package pool
