package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
)

// Scenario defines one benchmark configuration.
type Scenario struct {
	Name       string            `json:"name"`
	Resolution images.Resolution `json:"resolution"`
	Radius     int               `json:"radius"`
	// Sigma selects the Gaussian approximation instead of a single box blur.
	Sigma      float32 `json:"sigma,omitempty"`
	Parallel   bool    `json:"parallel"`
	Workers    int     `json:"workers,omitempty"`
	Pooled     bool    `json:"pooled"`
	Iterations int     `json:"iterations"`
	WarmupRuns int     `json:"warmup_runs"`
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a scenario builder with a radius 3 box blur at
// 640x640, 100 iterations and 10 warmup runs.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	res, _ := images.GetResolutionByType(images.ResolutionTypeSquare)
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Resolution: res,
			Radius:     3,
			Iterations: 100,
			WarmupRuns: 10,
		},
	}
}

// WithResolution sets the frame size.
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithSize sets an ad-hoc frame size.
func (sb *ScenarioBuilder) WithSize(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = images.NewResolution(width, height)
	return sb
}

// WithRadius sets the box blur radius.
func (sb *ScenarioBuilder) WithRadius(radius int) *ScenarioBuilder {
	sb.scenario.Radius = radius
	return sb
}

// WithGaussian switches the scenario to a Gaussian approximation.
func (sb *ScenarioBuilder) WithGaussian(sigma float32) *ScenarioBuilder {
	sb.scenario.Sigma = sigma
	return sb
}

// WithParallel enables row-parallel passes over the given number of workers.
// Zero workers uses every CPU.
func (sb *ScenarioBuilder) WithParallel(workers int) *ScenarioBuilder {
	sb.scenario.Parallel = true
	sb.scenario.Workers = workers
	return sb
}

// WithPool reuses intermediate buffers across iterations.
func (sb *ScenarioBuilder) WithPool() *ScenarioBuilder {
	sb.scenario.Pooled = true
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// QuickScenarios runs each quick resolution sequentially and in parallel at radius 3.
func QuickScenarios() *ScenarioSet {
	var scenarios []Scenario
	for _, res := range images.GetQuickResolutions() {
		scenarios = append(scenarios,
			NewScenarioBuilder(fmt.Sprintf("quick_%s_seq", res.Name)).
				WithResolution(res).
				WithIterations(20).
				WithWarmupRuns(2).
				Build(),
			NewScenarioBuilder(fmt.Sprintf("quick_%s_par", res.Name)).
				WithResolution(res).
				WithParallel(0).
				WithPool().
				WithIterations(20).
				WithWarmupRuns(2).
				Build())
	}
	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Sequential and parallel radius 3 blur at common frame sizes",
		Scenarios:   scenarios,
	}
}

// RadiusSweepScenarios blurs one resolution at each radius. Timings should be
// flat across radii.
func RadiusSweepScenarios(res images.Resolution, radii []int) *ScenarioSet {
	var scenarios []Scenario
	for _, r := range radii {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("radius_%s_r%d", res.Name, r)).
			WithResolution(res).
			WithRadius(r).
			WithIterations(50).
			WithWarmupRuns(5).
			Build())
	}
	return &ScenarioSet{
		Name:        fmt.Sprintf("Radius Sweep @ %s", res.Name),
		Description: "Same frame size, increasing radius",
		Scenarios:   scenarios,
	}
}

// ComprehensiveScenarios covers every resolution, both execution modes and
// each radius given.
func ComprehensiveScenarios(radii []int) *ScenarioSet {
	var scenarios []Scenario
	for _, res := range images.GetAllResolutions() {
		for _, r := range radii {
			for _, parallel := range []bool{false, true} {
				b := NewScenarioBuilder(fmt.Sprintf("%s_r%d_parallel=%v", res.Name, r, parallel)).
					WithResolution(res).
					WithRadius(r)
				if parallel {
					b.WithParallel(0).WithPool()
				}
				if res.Heavy {
					b.WithIterations(10).WithWarmupRuns(1)
				}
				scenarios = append(scenarios, b.Build())
			}
		}
	}
	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "All resolutions, radii and execution modes",
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(set *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal scenario set")
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "write scenario file")
	}
	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}
	var set ScenarioSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, errors.Wrap(err, "unmarshal scenario set")
	}
	return &set, nil
}
