package scheduler

import (
	"fmt"
	"strings"
)

// StrategyType selects the retrieval policy of a Scheduler.
type StrategyType int

const (
	// StrategyFIFO pops the oldest pushed task first.
	StrategyFIFO StrategyType = iota
	// StrategyLIFO pops the newest pushed task first.
	StrategyLIFO
	// StrategyLargestCost pops the task with the greatest cost first; equal costs keep
	// insertion order.
	StrategyLargestCost
	// StrategyMutexes groups tasks by mutex and prefers tasks whose mutex is free.
	StrategyMutexes
)

var strategyNames = map[StrategyType]string{
	StrategyFIFO:        "fifo",
	StrategyLIFO:        "lifo",
	StrategyLargestCost: "largest_cost",
	StrategyMutexes:     "mutexes",
}

func (s StrategyType) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StrategyType(%d)", int(s))
}

// ParseStrategy converts a configuration string into a StrategyType.
// Matching is case-insensitive and accepts "-" in place of "_".
func ParseStrategy(name string) (StrategyType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch normalized {
	case "", "fifo":
		return StrategyFIFO, nil
	case "lifo":
		return StrategyLIFO, nil
	case "largest_cost", "largestcost", "cost":
		return StrategyLargestCost, nil
	case "mutexes", "mutex":
		return StrategyMutexes, nil
	default:
		return StrategyFIFO, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
