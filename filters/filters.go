// Package filters - Pixel transforms applied to rasters, built on the blur engine.
package filters

import (
	"context"
	"strings"

	"github.com/nvr-ai/go-boxblur/config"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/pkg/errors"
)

// PixelTransform maps a source raster to a new destination raster.
//
// Implementations never modify src. progress follows the kernels.ProgressSink
// contract: one TotalUnits call, then UnitCompleted calls, then exactly one
// Finished call. A nil progress is allowed.
type PixelTransform interface {
	Name() string
	Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error)
}

// Units returns the progress budget a transform announces for a raster of the
// given size. Chain uses it to announce one total for all its members.
func Units(t PixelTransform, width, height int) int {
	if u, ok := t.(interface{ units(w, h int) int }); ok {
		return u.units(width, height)
	}
	return 1
}

func sinkOrNop(p kernels.ProgressSink) kernels.ProgressSink {
	if p == nil {
		return kernels.NopProgress{}
	}
	return p
}

// FromSpec builds a transform from its configuration.
//
// Arguments:
//   - spec: The filter configuration. It is validated first.
//   - parallel: Whether blur transforms split rows across goroutines.
//
// Returns:
//   - PixelTransform: The configured transform.
//   - error: config.ErrInvalidConfig for unknown names or bad parameters.
func FromSpec(spec config.FilterSpec, parallel bool) (PixelTransform, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(spec.Name) {
	case "boxblur", "blur":
		return &BoxBlur{Radius: spec.Radius, Parallel: parallel}, nil
	case "gaussian":
		return &GaussianBlur{Sigma: spec.Sigma, Passes: spec.Passes, Parallel: parallel}, nil
	case "fill":
		c, err := config.ParseColor(spec.Color)
		if err != nil {
			return nil, err
		}
		return &Fill{Color: c}, nil
	case "resize":
		return &Resize{Width: spec.Width, Height: spec.Height}, nil
	}
	return nil, errors.Wrapf(config.ErrInvalidConfig, "unknown filter %q", spec.Name)
}

// FromConfig builds the chain of every filter in cfg.
func FromConfig(cfg *config.Config) (*Chain, error) {
	chain := &Chain{}
	for i, spec := range cfg.Filters {
		t, err := FromSpec(spec, cfg.Parallel)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %d", i)
		}
		if b, ok := t.(*BoxBlur); ok {
			b.Workers = cfg.Workers
		}
		if g, ok := t.(*GaussianBlur); ok {
			g.Workers = cfg.Workers
		}
		chain.Transforms = append(chain.Transforms, t)
	}
	return chain, nil
}
