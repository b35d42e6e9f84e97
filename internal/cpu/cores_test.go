package cpu

import (
	"runtime"
	"testing"
)

func TestClampCores(t *testing.T) {
	tests := []struct {
		name     string
		physical int
		maxCores int
		haveMax  bool
		want     int
	}{
		{name: "no override", physical: 8, want: 8},
		{name: "override below physical", physical: 8, maxCores: 2, haveMax: true, want: 2},
		{name: "override above physical is clamped", physical: 4, maxCores: 64, haveMax: true, want: 4},
		{name: "zero override is absent", physical: 4, maxCores: 0, haveMax: true, want: 4},
		{name: "negative override is absent", physical: 4, maxCores: -3, haveMax: true, want: 4},
		{name: "unset flag ignores value", physical: 4, maxCores: 1, haveMax: false, want: 4},
		{name: "never below one", physical: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampCores(tt.physical, tt.maxCores, tt.haveMax); got != tt.want {
				t.Errorf("clampCores(%d, %d, %v) = %d, want %d", tt.physical, tt.maxCores, tt.haveMax, got, tt.want)
			}
		})
	}
}

func TestPhysicalCores(t *testing.T) {
	n := PhysicalCores()
	if n < 1 {
		t.Fatalf("expected at least one core, got %d", n)
	}
	if n > runtime.NumCPU() {
		t.Errorf("physical cores %d exceed logical CPUs %d", n, runtime.NumCPU())
	}
}

func TestDetectThreads(t *testing.T) {
	physical := PhysicalCores()

	if got := DetectThreads(0, false); got != physical {
		t.Errorf("DetectThreads without override = %d, want %d", got, physical)
	}
	if got := DetectThreads(1, true); got != 1 {
		t.Errorf("DetectThreads(1) = %d, want 1", got)
	}
	if got := DetectThreads(physical+10, true); got != physical {
		t.Errorf("DetectThreads above physical = %d, want %d", got, physical)
	}
}

func TestSetupWorkerAffinity(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		cleanup := SetupWorkerAffinity(3)
		cleanup()
	}()
	<-done
}

func TestSetupWorkerAffinity_RunsWork(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		cleanup := SetupWorkerAffinity(1)
		defer cleanup()

		sum := 0
		for i := range 1000 {
			sum += i
		}
		if sum != 499500 {
			t.Errorf("unexpected sum %d", sum)
		}
	}()
	<-done
}
