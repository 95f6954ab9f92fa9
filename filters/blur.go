package filters

import (
	"context"
	"fmt"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// BoxBlur blurs with a square box of side 2*Radius+1.
type BoxBlur struct {
	Radius   int
	Parallel bool
	Workers  int
	// Pool is shared by every Apply call.
	Pool *kernels.Pool
}

// Name implements PixelTransform.
func (b *BoxBlur) Name() string { return fmt.Sprintf("boxblur(r=%d)", b.Radius) }

func (b *BoxBlur) units(w, h int) int { return w + h }

// Apply implements PixelTransform.
func (b *BoxBlur) Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error) {
	return kernels.BlurRaster(ctx, src, kernels.Options{
		Radius:   b.Radius,
		Parallel: b.Parallel,
		Workers:  b.Workers,
		Pool:     b.Pool,
		Progress: progress,
	})
}

// GaussianBlur approximates a Gaussian blur with Passes box blurs.
type GaussianBlur struct {
	Sigma    float32
	Passes   int
	Parallel bool
	Workers  int
	Pool     *kernels.Pool
}

// Name implements PixelTransform.
func (g *GaussianBlur) Name() string { return fmt.Sprintf("gaussian(sigma=%g)", g.Sigma) }

func (g *GaussianBlur) passes() int {
	if g.Passes < 1 {
		return kernels.DefaultGaussianPasses
	}
	return g.Passes
}

func (g *GaussianBlur) units(w, h int) int {
	n := 0
	for _, r := range kernels.GaussianBoxes(g.Sigma, g.passes()) {
		if r > 0 {
			n++
		}
	}
	return n * (w + h)
}

// Apply implements PixelTransform.
func (g *GaussianBlur) Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	pix, err := kernels.GaussianBlur(ctx, src.Pix, src.Width, src.Height, g.Sigma, g.passes(), kernels.Options{
		Parallel: g.Parallel,
		Workers:  g.Workers,
		Pool:     g.Pool,
		Progress: progress,
	})
	if err != nil {
		return nil, err
	}
	return &images.Raster{Pix: pix, Width: src.Width, Height: src.Height}, nil
}
