//go:build !linux && !windows

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread.
// Thread pinning is not available here, so workers are only locked to their thread.
func SetupWorkerAffinity(workerID int) func() {
	runtime.LockOSThread()

	return func() {
		runtime.UnlockOSThread()
	}
}
