//go:build linux

package cpu

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

var sysfsCPURoot = "/sys/devices/system/cpu"

// maxCPUs is the number of CPUs a unix.CPUSet can describe.
const maxCPUs = 1024

// physicalCores counts distinct (package, core) pairs among the CPUs in this
// process's affinity mask, so hyper-threaded siblings and CPUs excluded by taskset or
// cgroups are not counted.
func physicalCores() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0
	}

	allowed := set.Count()
	cores := make(map[string]struct{}, allowed)
	for cpuID, seen := 0, 0; seen < allowed && cpuID < maxCPUs; cpuID++ {
		if !set.IsSet(cpuID) {
			continue
		}
		seen++

		key, err := coreKey(sysfsCPURoot, cpuID)
		if err != nil {
			return allowed
		}
		cores[key] = struct{}{}
	}

	if len(cores) == 0 {
		return allowed
	}
	return len(cores)
}

// coreKey identifies the physical core a logical CPU belongs to.
func coreKey(root string, cpuID int) (string, error) {
	dir := filepath.Join(root, fmt.Sprintf("cpu%d", cpuID), "topology")

	pkg, err := os.ReadFile(filepath.Join(dir, "physical_package_id"))
	if err != nil {
		return "", err
	}
	core, err := os.ReadFile(filepath.Join(dir, "core_id"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pkg)) + ":" + strings.TrimSpace(string(core)), nil
}
