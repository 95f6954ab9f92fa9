package kernels

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
)

// MemoryProfiler samples heap and GC statistics while blur calls run.
// It is used to size buffer pools for frame-rate workloads.
type MemoryProfiler struct {
	interval time.Duration

	mu      sync.Mutex
	samples []MemorySample
	gcs     []GCEvent

	stop chan struct{}
	wg   sync.WaitGroup
}

// MemorySample is one snapshot of runtime memory statistics.
type MemorySample struct {
	Timestamp    time.Time
	HeapAlloc    uint64
	HeapSys      uint64
	HeapInuse    uint64
	TotalAlloc   uint64
	Mallocs      uint64
	Frees        uint64
	PauseTotalNs uint64
	NumGC        uint32
}

// GCEvent records GC cycles observed between two samples.
type GCEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Cycles     uint32        `json:"cycles"`
	AvgPause   time.Duration `json:"avg_pause"`
	HeapBefore uint64        `json:"heap_before"`
	HeapAfter  uint64        `json:"heap_after"`
}

// NewMemoryProfiler creates a profiler sampling at the given interval.
func NewMemoryProfiler(interval time.Duration) *MemoryProfiler {
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	return &MemoryProfiler{
		interval: interval,
		samples:  make([]MemorySample, 0, 256),
	}
}

// Start begins sampling in a background goroutine. It takes one sample
// immediately so short runs still have a baseline.
func (mp *MemoryProfiler) Start() {
	mp.record(captureSample())
	mp.stop = make(chan struct{})
	mp.wg.Add(1)
	go func() {
		defer mp.wg.Done()
		ticker := time.NewTicker(mp.interval)
		defer ticker.Stop()
		for {
			select {
			case <-mp.stop:
				return
			case <-ticker.C:
				mp.record(captureSample())
			}
		}
	}()
}

// Stop ends sampling, takes a final sample and builds the report.
func (mp *MemoryProfiler) Stop() *MemoryAnalysisReport {
	if mp.stop != nil {
		close(mp.stop)
		mp.wg.Wait()
		mp.stop = nil
	}
	mp.record(captureSample())

	mp.mu.Lock()
	defer mp.mu.Unlock()
	return buildReport(mp.samples, mp.gcs)
}

func (mp *MemoryProfiler) record(s MemorySample) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if n := len(mp.samples); n > 0 {
		prev := mp.samples[n-1]
		if s.NumGC > prev.NumGC {
			cycles := s.NumGC - prev.NumGC
			mp.gcs = append(mp.gcs, GCEvent{
				Timestamp:  s.Timestamp,
				Cycles:     cycles,
				AvgPause:   time.Duration((s.PauseTotalNs - prev.PauseTotalNs) / uint64(cycles)),
				HeapBefore: prev.HeapAlloc,
				HeapAfter:  s.HeapAlloc,
			})
		}
	}

	// Long runs keep only the most recent half.
	if len(mp.samples) >= 10000 {
		mp.samples = append(mp.samples[:0], mp.samples[5000:]...)
	}
	mp.samples = append(mp.samples, s)
}

func captureSample() MemorySample {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySample{
		Timestamp:    time.Now(),
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapInuse:    m.HeapInuse,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		Frees:        m.Frees,
		PauseTotalNs: m.PauseTotalNs,
		NumGC:        m.NumGC,
	}
}

// MemoryAnalysisReport summarizes a profiling window.
type MemoryAnalysisReport struct {
	Duration         time.Duration `json:"duration"`
	SampleCount      int           `json:"sample_count"`
	TotalAllocated   uint64        `json:"total_allocated"`
	PeakHeapUsage    uint64        `json:"peak_heap_usage"`
	AverageHeapUsage uint64        `json:"average_heap_usage"`
	AllocationRate   float64       `json:"allocation_rate"` // bytes/s
	TotalGCPauses    time.Duration `json:"total_gc_pauses"`
	GCCycles         uint32        `json:"gc_cycles"`
	GCFrequency      float64       `json:"gc_frequency"` // cycles/s
	GCOverhead       float64       `json:"gc_overhead"`  // fraction of wall time
	LargestGCPause   time.Duration `json:"largest_gc_pause"`
	GCEvents         []GCEvent     `json:"gc_events"`

	// FrameBudgetImpact is the largest pause as a fraction of a 30 FPS frame.
	FrameBudgetImpact float64 `json:"frame_budget_impact"`
}

func buildReport(samples []MemorySample, gcs []GCEvent) *MemoryAnalysisReport {
	if len(samples) == 0 {
		return &MemoryAnalysisReport{}
	}

	first, last := samples[0], samples[len(samples)-1]
	report := &MemoryAnalysisReport{
		Duration:       last.Timestamp.Sub(first.Timestamp),
		SampleCount:    len(samples),
		TotalAllocated: last.TotalAlloc - first.TotalAlloc,
		TotalGCPauses:  time.Duration(last.PauseTotalNs - first.PauseTotalNs),
		GCCycles:       last.NumGC - first.NumGC,
		GCEvents:       append([]GCEvent(nil), gcs...),
	}

	var total uint64
	for _, s := range samples {
		total += s.HeapAlloc
		if s.HeapAlloc > report.PeakHeapUsage {
			report.PeakHeapUsage = s.HeapAlloc
		}
	}
	report.AverageHeapUsage = total / uint64(len(samples))

	for _, e := range gcs {
		if e.AvgPause > report.LargestGCPause {
			report.LargestGCPause = e.AvgPause
		}
	}

	if secs := report.Duration.Seconds(); secs > 0 {
		report.AllocationRate = float64(report.TotalAllocated) / secs
		report.GCFrequency = float64(report.GCCycles) / secs
		report.GCOverhead = float64(report.TotalGCPauses) / float64(report.Duration)
	}
	report.FrameBudgetImpact = float64(report.LargestGCPause) / float64(time.Second/30)

	return report
}

// BlurMemoryProfile is a MemoryAnalysisReport for repeated blurs of one raster.
type BlurMemoryProfile struct {
	*MemoryAnalysisReport

	Iterations              int           `json:"iterations"`
	Width                   int           `json:"width"`
	Height                  int           `json:"height"`
	Radius                  int           `json:"radius"`
	Parallel                bool          `json:"parallel"`
	PoolEnabled             bool          `json:"pool_enabled"`
	OperationDuration       time.Duration `json:"operation_duration"`
	AvgIterationTime        time.Duration `json:"avg_iteration_time"`
	AllocationsPerIteration uint64        `json:"allocations_per_iteration"`
	BytesPerIteration       uint64        `json:"bytes_per_iteration"`
}

// ProfileBlurOperation blurs r iterations times under a MemoryProfiler.
//
// Arguments:
//   - r: The raster to blur. Not modified.
//   - opts: Blur options. Progress is ignored.
//   - iterations: Number of blur calls, at least 1.
//
// Returns:
//   - *BlurMemoryProfile: Aggregate and per-iteration memory metrics.
//   - error: Any error returned by the blur.
func ProfileBlurOperation(r *images.Raster, opts Options, iterations int) (*BlurMemoryProfile, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "iterations %d", iterations)
	}
	opts.Progress = nil

	profiler := NewMemoryProfiler(10 * time.Millisecond)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	profiler.Start()

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := BlurRaster(context.Background(), r, opts); err != nil {
			profiler.Stop()
			return nil, err
		}
	}
	elapsed := time.Since(start)

	report := profiler.Stop()
	runtime.ReadMemStats(&after)

	radius := opts.Radius
	if radius < 1 {
		radius = 1
	}

	n := uint64(iterations)
	return &BlurMemoryProfile{
		MemoryAnalysisReport:    report,
		Iterations:              iterations,
		Width:                   r.Width,
		Height:                  r.Height,
		Radius:                  radius,
		Parallel:                opts.Parallel,
		PoolEnabled:             opts.Pool != nil,
		OperationDuration:       elapsed,
		AvgIterationTime:        elapsed / time.Duration(iterations),
		AllocationsPerIteration: (after.Mallocs - before.Mallocs) / n,
		BytesPerIteration:       (after.TotalAlloc - before.TotalAlloc) / n,
	}, nil
}

// MemoryComparisonReport compares two blur configurations. Ratios are a / b.
type MemoryComparisonReport struct {
	NameA           string             `json:"name_a"`
	NameB           string             `json:"name_b"`
	ProfileA        *BlurMemoryProfile `json:"profile_a"`
	ProfileB        *BlurMemoryProfile `json:"profile_b"`
	AllocationRatio float64            `json:"allocation_ratio"`
	PeakMemoryRatio float64            `json:"peak_memory_ratio"`
	TimeRatio       float64            `json:"time_ratio"`
	Recommended     string             `json:"recommended"`
}

// CompareMemoryProfiles compares two profiles and recommends the one with the
// better composite score.
func CompareMemoryProfiles(a, b *BlurMemoryProfile, nameA, nameB string) *MemoryComparisonReport {
	c := &MemoryComparisonReport{
		NameA:           nameA,
		NameB:           nameB,
		ProfileA:        a,
		ProfileB:        b,
		AllocationRatio: ratio(float64(a.BytesPerIteration), float64(b.BytesPerIteration)),
		PeakMemoryRatio: ratio(float64(a.PeakHeapUsage), float64(b.PeakHeapUsage)),
		TimeRatio:       ratio(float64(a.AvgIterationTime), float64(b.AvgIterationTime)),
	}

	sa, sb := profileScore(a), profileScore(b)
	switch {
	case sa > sb:
		c.Recommended = nameA
	case sb > sa:
		c.Recommended = nameB
	default:
		c.Recommended = "equivalent"
	}
	return c
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// profileScore is higher for fewer bytes per iteration, less GC and faster runs.
func profileScore(p *BlurMemoryProfile) float64 {
	score := 1000.0
	score -= float64(p.BytesPerIteration) / (1 << 20) * 100
	score -= p.GCFrequency * 50
	score -= p.GCOverhead * 500
	score -= float64(p.LargestGCPause) / float64(time.Millisecond) / 10
	if ns := p.AvgIterationTime.Nanoseconds(); ns > 0 {
		score += 1e9 / float64(ns)
	}
	return score
}

// FormatReport renders the report for terminals and logs.
func (report *MemoryAnalysisReport) FormatReport() string {
	const mb = 1 << 20
	var b strings.Builder
	fmt.Fprintf(&b, "Memory Analysis Report\n")
	fmt.Fprintf(&b, "======================\n")
	fmt.Fprintf(&b, "Duration: %v (%d samples)\n", report.Duration, report.SampleCount)
	fmt.Fprintf(&b, "Peak heap: %.2f MB\n", float64(report.PeakHeapUsage)/mb)
	fmt.Fprintf(&b, "Average heap: %.2f MB\n", float64(report.AverageHeapUsage)/mb)
	fmt.Fprintf(&b, "Total allocated: %.2f MB (%.2f MB/s)\n", float64(report.TotalAllocated)/mb, report.AllocationRate/mb)
	fmt.Fprintf(&b, "GC: %d cycles, %.2f/s, %v paused (%.2f%%)\n",
		report.GCCycles, report.GCFrequency, report.TotalGCPauses, report.GCOverhead*100)
	fmt.Fprintf(&b, "Largest pause: %v (%.2f%% of a 30 FPS frame)\n", report.LargestGCPause, report.FrameBudgetImpact*100)
	return b.String()
}

// FormatComparison renders the comparison for terminals and logs.
func (c *MemoryComparisonReport) FormatComparison() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Memory Comparison: %s vs %s\n", c.NameA, c.NameB)
	fmt.Fprintf(&b, "Recommended: %s\n", c.Recommended)
	fmt.Fprintf(&b, "Bytes/iteration ratio: %.2fx\n", c.AllocationRatio)
	fmt.Fprintf(&b, "Peak heap ratio: %.2fx\n", c.PeakMemoryRatio)
	fmt.Fprintf(&b, "Time ratio: %.2fx\n", c.TimeRatio)
	return b.String()
}
