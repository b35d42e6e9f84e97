//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// maxMaskCPUs is the width of a thread affinity mask within one processor group.
const maxMaskCPUs = 64

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to core workerID modulo the logical CPU count.
// Must be called after runtime.LockOSThread().
func pinToCore(workerID int) (int, error) {
	numCPU := min(runtime.NumCPU(), maxMaskCPUs)
	cpuID := workerID % numCPU
	if cpuID < 0 {
		cpuID += numCPU
	}

	prev, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), uintptr(1)<<cpuID)
	if prev == 0 {
		return -1, err
	}
	return cpuID, nil
}

// SetupWorkerAffinity locks the calling goroutine to an OS thread and pins that thread
// to one core. The returned cleanup must be deferred by the worker goroutine.
//
// A pinned thread is left locked so the runtime terminates it when the goroutine exits.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()
	if _, err := pinToCore(workerID); err == nil {
		return func() {}
	}

	return func() {
		runtime.UnlockOSThread()
	}
}
