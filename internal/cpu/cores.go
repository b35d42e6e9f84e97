// Package cpu detects how many cores a pool may use and pins worker threads to them.
package cpu

import "runtime"

// PhysicalCores returns the number of physical cores available to this process.
// It falls back to the logical CPU count when the platform cannot tell them apart,
// and never returns less than 1.
func PhysicalCores() int {
	n := physicalCores()
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}

// DetectThreads returns the worker count for a pool created without an explicit size:
// the physical core count, clamped to maxCores when haveMax is set and maxCores is
// positive. A non-positive maxCores is treated as absent.
func DetectThreads(maxCores int, haveMax bool) int {
	return clampCores(PhysicalCores(), maxCores, haveMax)
}

func clampCores(physical, maxCores int, haveMax bool) int {
	physical = max(physical, 1)
	if !haveMax || maxCores <= 0 {
		return physical
	}
	return min(maxCores, physical)
}
