package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

func printSummary(r runResult) {
	fmt.Println()
	_, _ = bold.Println("Run summary")
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Scheduler", "Threads", "Tasks", "Completed", "Total Cost", "Cost Executed", "Elapsed", "Result")
	_ = table.Append(
		r.strategy.String(),
		fmt.Sprintf("%d", r.threads),
		formatNumber(r.scheduled),
		formatNumber(int(r.completed)),
		fmt.Sprintf("%.0f", r.totalCost),
		fmt.Sprintf("%.0f (%s)", r.costExecuted, percent(r.costExecuted, r.totalCost)),
		r.elapsed.Round(time.Millisecond).String(),
		resultLabel(r.err),
	)
	if err := table.Render(); err != nil {
		_, _ = red.Println("Error rendering summary table")
	}

	if r.err != nil {
		fmt.Println()
		_, _ = red.Printf("✗ %v\n", r.err)
		return
	}
	_, _ = green.Println("✓ all tasks completed")
}

func resultLabel(err error) string {
	if err != nil {
		return red.Sprint("failed")
	}
	return green.Sprint("ok")
}

func percent(part, total float64) string {
	if total <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", 100*part/total)
}

// formatNumber formats an integer with comma separators
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
