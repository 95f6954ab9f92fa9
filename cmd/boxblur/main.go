// Command boxblur blurs image files or directories of images.
//
// Usage:
//
//	boxblur -input photo.jpg -radius 8
//	boxblur -config pipeline.yaml -input frames/ -output out/ -parallel
//	boxblur -bench quick -bench-out results/
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/nvr-ai/go-boxblur/benchmark"
	"github.com/nvr-ai/go-boxblur/config"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
)

var (
	flagConfig    = flag.String("config", "", "Configuration file (.yaml, .yml or .json)")
	flagInput     = flag.String("input", "", "Image file or directory of images")
	flagOutput    = flag.String("output", "", "Output file, or directory when -input is a directory")
	flagRadius    = flag.Int("radius", kernels.DefaultRadius, "Box blur radius; replaces the configured filters")
	flagSigma     = flag.Float64("sigma", 0, "Gaussian sigma; replaces the configured filters")
	flagParallel  = flag.Bool("parallel", true, "Split blur passes across goroutines")
	flagWorkers   = flag.Int("workers", 0, "Maximum blur goroutines, 0 for one per CPU")
	flagFormat    = flag.String("format", "", "Output format: jpeg, png, webp, bmp or tiff. Empty keeps the input format")
	flagQuality   = flag.Int("quality", images.DefaultQuality, "JPEG and WebP quality, 1-100")
	flagMaxWidth  = flag.Int("max-width", 0, "Downscale inputs wider than this at decode time")
	flagMaxHeight = flag.Int("max-height", 0, "Downscale inputs taller than this at decode time")
	flagBench     = flag.String("bench", "", "Run a benchmark set instead: quick, sweep or full")
	flagBenchOut  = flag.String("bench-out", "benchmark_results", "Directory for benchmark results")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	kernels.SetLogger(slog.New(&glogHandler{}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flagBench != "" {
		if err := runBenchmark(ctx, *flagBench, *flagBenchOut, *flagInput); err != nil {
			glog.Exitf("Benchmark failed: %v", err)
		}
		return
	}

	cfg, err := buildConfig()
	if err != nil {
		glog.Exitf("Configuration: %v", err)
	}
	if cfg.Input == "" {
		glog.Exit("No input: pass -input or set input in the config file")
	}

	r, err := newRunner(cfg)
	if err != nil {
		glog.Exitf("Configuration: %v", err)
	}
	if err := r.run(ctx); err != nil {
		glog.Exitf("Failed: %v", err)
	}
}

// buildConfig loads -config when given and overlays every flag set explicitly
// on the command line.
func buildConfig() (*config.Config, error) {
	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			return nil, err
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return applyFlags(cfg, set), nil
}

func applyFlags(cfg *config.Config, set map[string]bool) *config.Config {
	if set["input"] {
		cfg.Input = *flagInput
	}
	if set["output"] {
		cfg.Output = *flagOutput
	}
	if set["format"] {
		cfg.Format = images.ImageFormat(*flagFormat)
		if f, err := images.ParseFormat(*flagFormat); err == nil {
			cfg.Format = f
		}
	}
	if set["quality"] {
		cfg.Quality = *flagQuality
	}
	if set["max-width"] {
		cfg.MaxWidth = *flagMaxWidth
	}
	if set["max-height"] {
		cfg.MaxHeight = *flagMaxHeight
	}
	if set["parallel"] {
		cfg.Parallel = *flagParallel
	}
	if set["workers"] {
		cfg.Workers = *flagWorkers
	}
	switch {
	case set["sigma"]:
		cfg.Filters = []config.FilterSpec{{Name: "gaussian", Sigma: float32(*flagSigma)}}
	case set["radius"]:
		cfg.Filters = []config.FilterSpec{{Name: "boxblur", Radius: *flagRadius}}
	}
	return cfg
}

func runBenchmark(ctx context.Context, set, outDir, corpus string) error {
	suite := benchmark.NewSuite(outDir)
	if corpus != "" {
		if err := suite.LoadCorpus(corpus); err != nil {
			return err
		}
	}

	switch set {
	case "quick":
		suite.AddScenarioSet(benchmark.QuickScenarios())
	case "sweep":
		res, _ := images.GetResolutionByType(images.ResolutionTypeFHD1080p)
		suite.AddScenarioSet(benchmark.RadiusSweepScenarios(res, []int{1, 2, 4, 8, 16, 32, 64, 128}))
	case "full":
		suite.AddScenarioSet(benchmark.ComprehensiveScenarios([]int{1, 3, 9, 27}))
	default:
		glog.Exitf("Unknown benchmark set %q: want quick, sweep or full", set)
	}

	if err := suite.RunAllScenarios(ctx); err != nil {
		return err
	}
	for _, m := range suite.GetResults() {
		glog.Infof("%-40s %8.2f fps %10.2f MPx/s  avg %v", m.Scenario.Name, m.FramesPerSecond, m.MegapixelsPerSecond, m.AvgIterationTime)
	}
	return nil
}
