//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to the workerID-th CPU of the process's
// affinity mask, wrapping around when there are more workers than CPUs.
// Must be called after runtime.LockOSThread().
func pinToCore(workerID int) (int, error) {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return -1, err
	}

	n := allowed.Count()
	if n == 0 {
		return -1, nil
	}
	target := workerID % n
	if target < 0 {
		target += n
	}

	cpuID := -1
	for i, seen := 0, 0; i < maxCPUs; i++ {
		if !allowed.IsSet(i) {
			continue
		}
		if seen == target {
			cpuID = i
			break
		}
		seen++
	}
	if cpuID < 0 {
		return -1, nil
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return -1, err
	}
	return cpuID, nil
}

// SetupWorkerAffinity locks the calling goroutine to an OS thread and pins that thread
// to one core. The returned cleanup must be deferred by the worker goroutine.
//
// A pinned thread is left locked so the runtime terminates it when the goroutine exits
// instead of returning a narrowed thread to the scheduler.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()
	if cpuID, err := pinToCore(workerID); err == nil && cpuID >= 0 {
		return func() {}
	}

	return func() {
		runtime.UnlockOSThread()
	}
}
