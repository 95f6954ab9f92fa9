// Package benchmark - Functionality for running blur benchmarks.
package benchmark

import "time"

// PerformanceMetrics captures the timing and memory profile of one scenario.
type PerformanceMetrics struct {
	Scenario            Scenario      `json:"scenario"`
	Timestamp           time.Time     `json:"timestamp"`
	TotalDuration       time.Duration `json:"total_duration"`
	AvgIterationTime    time.Duration `json:"avg_iteration_time"`
	MinIterationTime    time.Duration `json:"min_iteration_time"`
	MaxIterationTime    time.Duration `json:"max_iteration_time"`
	FramesPerSecond     float64       `json:"frames_per_second"`
	MegapixelsPerSecond float64       `json:"megapixels_per_second"`
	MemoryStats         MemoryMetrics `json:"memory_stats"`
	CPUStats            CPUMetrics    `json:"cpu_stats"`
	ErrorRate           float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes          uint64 `json:"alloc_bytes"`
	TotalAllocBytes     uint64 `json:"total_alloc_bytes"`
	BytesPerIteration   uint64 `json:"bytes_per_iteration"`
	MallocsPerIteration uint64 `json:"mallocs_per_iteration"`
	SysBytes            uint64 `json:"sys_bytes"`
	NumGC               uint32 `json:"num_gc"`
	HeapAllocBytes      uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes        uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
}
