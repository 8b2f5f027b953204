// Package benchmark - Throughput and latency measurements for detector
// post-processing.
package benchmark

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// PerformanceMetrics captures the results of one scenario run.
type PerformanceMetrics struct {
	Scenario        Scenario       `json:"scenario"`
	Timestamp       time.Time      `json:"timestamp"`
	TotalDuration   time.Duration  `json:"total_duration"`
	Latency         LatencyMetrics `json:"latency"`
	FramesPerSecond float64        `json:"frames_per_second"`
	MemoryStats     MemoryMetrics  `json:"memory_stats"`
	DetectionCount  int            `json:"detection_count"`
	ErrorRate       float64        `json:"error_rate"`
}

// LatencyMetrics summarizes per-call Detect latency.
type LatencyMetrics struct {
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"std_dev"`
	P50    time.Duration `json:"p50"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Max    time.Duration `json:"max"`
}

// MemoryMetrics captures memory usage statistics.
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// summarizeLatency computes latency statistics from raw samples.
func summarizeLatency(samples []time.Duration) LatencyMetrics {
	if len(samples) == 0 {
		return LatencyMetrics{}
	}

	xs := make([]float64, len(samples))
	for i, d := range samples {
		xs[i] = float64(d)
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	q := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, xs, nil))
	}

	return LatencyMetrics{
		Mean:   time.Duration(mean),
		StdDev: time.Duration(std),
		P50:    q(0.5),
		P95:    q(0.95),
		P99:    q(0.99),
		Max:    time.Duration(xs[len(xs)-1]),
	}
}
