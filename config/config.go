// Package config - Configuration for the boxblur command and the filter pipeline.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// FilterSpec describes one pixel transform in the pipeline. Only the fields
// relevant to Name are read.
type FilterSpec struct {
	// Name selects the transform: "boxblur", "gaussian", "fill" or "resize".
	Name   string  `json:"name"             yaml:"name"`
	Radius int     `json:"radius,omitempty" yaml:"radius,omitempty"`
	Sigma  float32 `json:"sigma,omitempty"  yaml:"sigma,omitempty"`
	Passes int     `json:"passes,omitempty" yaml:"passes,omitempty"`
	// Color is a fill colour as "#RRGGBB" or "#AARRGGBB".
	Color  string `json:"color,omitempty"  yaml:"color,omitempty"`
	Width  int    `json:"width,omitempty"  yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// Config is the full configuration of a boxblur run.
type Config struct {
	// Input is an image file or a directory of images.
	Input string `json:"input" yaml:"input"`
	// Output is a file, or a directory when Input is a directory.
	Output string `json:"output" yaml:"output"`
	// Format of written images. Empty keeps the input format.
	Format images.ImageFormat `json:"format,omitempty" yaml:"format,omitempty"`
	// Quality for lossy encoders, 1-100.
	Quality int `json:"quality" yaml:"quality"`
	// MaxWidth and MaxHeight downscale inputs at decode time. Zero disables.
	MaxWidth  int `json:"maxWidth,omitempty"  yaml:"maxWidth,omitempty"`
	MaxHeight int `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
	// Workers caps blur goroutines. Zero uses every CPU.
	Workers  int  `json:"workers,omitempty" yaml:"workers,omitempty"`
	Parallel bool `json:"parallel"          yaml:"parallel"`
	// ProgressInterval is how often progress is logged. Zero disables it.
	ProgressInterval time.Duration `json:"progressInterval,omitempty" yaml:"progressInterval,omitempty"`
	Filters          []FilterSpec  `json:"filters"                    yaml:"filters"`
}

// Default returns a configuration that applies a single radius 3 box blur.
func Default() *Config {
	return &Config{
		Quality:          images.DefaultQuality,
		Parallel:         true,
		ProgressInterval: time.Second,
		Filters: []FilterSpec{
			{Name: "boxblur", Radius: 3},
		},
	}
}

// Load reads a configuration file on top of Default. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
//
// Arguments:
//   - path: The configuration file.
//
// Returns:
//   - *Config: The loaded configuration. It is not validated.
//   - error: Any read or parse error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg := Default()
	cfg.Filters = nil
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if len(cfg.Filters) == 0 {
		cfg.Filters = Default().Filters
	}
	return cfg, nil
}

// Save writes the configuration to path, choosing the encoding by extension
// like Load.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// Validate checks ranges and filter names. Input and Output are checked by the
// caller, which knows whether they must exist.
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return errors.Wrapf(ErrInvalidConfig, "quality %d out of range 1-100", c.Quality)
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max size %dx%d", c.MaxWidth, c.MaxHeight)
	}
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers %d", c.Workers)
	}
	if c.ProgressInterval < 0 {
		return errors.Wrapf(ErrInvalidConfig, "progress interval %v", c.ProgressInterval)
	}
	if c.Format != "" {
		if _, err := images.ParseFormat(string(c.Format)); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "format %q", c.Format)
		}
	}
	if len(c.Filters) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no filters")
	}
	for i, f := range c.Filters {
		if err := f.Validate(); err != nil {
			return errors.Wrapf(err, "filter %d", i)
		}
	}
	return nil
}

// Validate checks the fields required by the named transform.
func (f FilterSpec) Validate() error {
	switch strings.ToLower(f.Name) {
	case "boxblur", "blur":
		if f.Radius < 0 {
			return errors.Wrapf(ErrInvalidConfig, "radius %d", f.Radius)
		}
	case "gaussian":
		if f.Sigma <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "sigma %v", f.Sigma)
		}
		if f.Passes < 0 {
			return errors.Wrapf(ErrInvalidConfig, "passes %d", f.Passes)
		}
	case "fill":
		if _, err := ParseColor(f.Color); err != nil {
			return err
		}
	case "resize":
		if f.Width < 0 || f.Height < 0 || (f.Width == 0 && f.Height == 0) {
			return errors.Wrapf(ErrInvalidConfig, "resize to %dx%d", f.Width, f.Height)
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown filter %q", f.Name)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
