package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/nvr-ai/go-boxblur/util"
	"github.com/pkg/errors"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	outputDir string
	mu        sync.RWMutex
	scenarios []Scenario
	corpus    []*images.Raster
	results   []PerformanceMetrics
}

// NewSuite creates a suite writing results to outputDir.
func NewSuite(outputDir string) *Suite {
	return &Suite{outputDir: outputDir}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario in set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// LoadCorpus decodes every image in dir. Scenarios then blur these frames,
// scaled to the scenario resolution, instead of synthetic noise.
func (bs *Suite) LoadCorpus(dir string) error {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return err
	}

	var corpus []*images.Raster
	for _, f := range files {
		img, err := images.Decode(f.Data, f.Format)
		if err != nil {
			kernels.Logger().Warn("skipping corpus image", "path", f.Path, "error", err)
			continue
		}
		r, err := images.ReadRegion(img, img.Bounds())
		if err != nil {
			return errors.Wrap(err, f.Path)
		}
		corpus = append(corpus, r)
	}
	if len(corpus) == 0 {
		return errors.Errorf("no decodable images in %s", dir)
	}

	bs.mu.Lock()
	bs.corpus = corpus
	bs.mu.Unlock()
	return nil
}

// frames returns the inputs for a scenario, all at its resolution.
func (bs *Suite) frames(s Scenario) ([]*images.Raster, error) {
	w, h := s.Resolution.Pixels.Width, s.Resolution.Pixels.Height

	bs.mu.RLock()
	corpus := bs.corpus
	bs.mu.RUnlock()

	if len(corpus) == 0 {
		r, err := images.NewRaster(w, h)
		if err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(int64(w*h + s.Radius)))
		for i := range r.Pix {
			r.Pix[i] = rng.Uint32()
		}
		return []*images.Raster{r}, nil
	}

	frames := make([]*images.Raster, 0, len(corpus))
	for _, src := range corpus {
		if src.Width == w && src.Height == h {
			frames = append(frames, src)
			continue
		}
		scaled := resize.Resize(uint(w), uint(h), src.ToNRGBA(), resize.Bilinear)
		r, err := images.ReadRegion(scaled, scaled.Bounds())
		if err != nil {
			return nil, err
		}
		frames = append(frames, r)
	}
	return frames, nil
}

func (bs *Suite) blur(ctx context.Context, s Scenario, r *images.Raster, pool *kernels.Pool) error {
	opt := kernels.Options{
		Radius:   s.Radius,
		Parallel: s.Parallel,
		Workers:  s.Workers,
		Pool:     pool,
	}
	var err error
	if s.Sigma > 0 {
		_, err = kernels.GaussianBlur(ctx, r.Pix, r.Width, r.Height, s.Sigma, kernels.DefaultGaussianPasses, opt)
	} else {
		_, err = kernels.BlurRaster(ctx, r, opt)
	}
	return err
}

// RunScenario executes a single benchmark scenario
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations < 1 {
		return nil, errors.Errorf("scenario %s: iterations %d", scenario.Name, scenario.Iterations)
	}
	frames, err := bs.frames(scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	var pool *kernels.Pool
	if scenario.Pooled {
		pool = &kernels.Pool{}
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := bs.blur(ctx, scenario, frames[i%len(frames)], pool); err != nil {
			return nil, errors.Wrapf(err, "scenario %s warmup", scenario.Name)
		}
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	failures := 0
	start := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}
		iterStart := time.Now()
		if err := bs.blur(ctx, scenario, frames[i%len(frames)], pool); err != nil {
			failures++
			continue
		}
		d := time.Since(iterStart)
		if metrics.MinIterationTime == 0 || d < metrics.MinIterationTime {
			metrics.MinIterationTime = d
		}
		if d > metrics.MaxIterationTime {
			metrics.MaxIterationTime = d
		}
	}
	total := time.Since(start)

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	n := uint64(scenario.Iterations)
	metrics.TotalDuration = total
	metrics.AvgIterationTime = total / time.Duration(scenario.Iterations)
	if secs := total.Seconds(); secs > 0 {
		metrics.FramesPerSecond = float64(scenario.Iterations) / secs
		metrics.MegapixelsPerSecond = float64(scenario.Iterations) * float64(scenario.Resolution.PixelCount()) / 1e6 / secs
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:          endMem.Alloc,
		TotalAllocBytes:     endMem.TotalAlloc - startMem.TotalAlloc,
		BytesPerIteration:   (endMem.TotalAlloc - startMem.TotalAlloc) / n,
		MallocsPerIteration: (endMem.Mallocs - startMem.Mallocs) / n,
		SysBytes:            endMem.Sys,
		NumGC:               endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:      endMem.HeapAlloc,
		HeapSysBytes:        endMem.HeapSys,
	}
	metrics.CPUStats = CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return metrics, nil
}

// RunAllScenarios executes every scenario, records the results and saves them.
// A failing scenario is logged and skipped.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.RLock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.RUnlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			kernels.Logger().Error("scenario failed", "scenario", scenario.Name, "error", err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		kernels.Logger().Info("scenario completed",
			"scenario", scenario.Name,
			"fps", metrics.FramesPerSecond,
			"mpx_per_sec", metrics.MegapixelsPerSecond)
	}

	_, _, err := bs.SaveResults()
	return err
}

// SaveResults writes all results as JSON plus a CSV summary into the output
// directory and returns both paths.
func (bs *Suite) SaveResults() (string, string, error) {
	results := bs.GetResults()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "save summary CSV")
	}

	kernels.Logger().Info("benchmark results saved", "results", resultsFile, "summary", summaryFile)
	return resultsFile, summaryFile, nil
}

var summaryHeader = []string{
	"Scenario", "Resolution", "Width", "Height", "Radius", "Sigma", "Parallel", "Pooled",
	"FPS", "MPx_per_sec", "Avg_ms", "Min_ms", "Max_ms", "Bytes_per_iter", "Num_GC", "Error_Rate",
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}
	ms := func(d time.Duration) string { return strconv.FormatFloat(float64(d)/1e6, 'f', 3, 64) }
	for _, r := range results {
		s := r.Scenario
		row := []string{
			s.Name,
			string(s.Resolution.Name),
			strconv.Itoa(s.Resolution.Pixels.Width),
			strconv.Itoa(s.Resolution.Pixels.Height),
			strconv.Itoa(s.Radius),
			strconv.FormatFloat(float64(s.Sigma), 'g', -1, 32),
			strconv.FormatBool(s.Parallel),
			strconv.FormatBool(s.Pooled),
			strconv.FormatFloat(r.FramesPerSecond, 'f', 2, 64),
			strconv.FormatFloat(r.MegapixelsPerSecond, 'f', 2, 64),
			ms(r.AvgIterationTime),
			ms(r.MinIterationTime),
			ms(r.MaxIterationTime),
			strconv.FormatUint(r.MemoryStats.BytesPerIteration, 10),
			strconv.FormatUint(uint64(r.MemoryStats.NumGC), 10),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
