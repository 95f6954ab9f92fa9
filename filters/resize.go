package filters

import (
	"context"
	"fmt"

	"github.com/nfnt/resize"
	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// Resize scales a raster. A zero Width or Height keeps the aspect ratio.
type Resize struct {
	Width, Height int
	// Interpolation defaults to resize.NearestNeighbor.
	Interpolation resize.InterpolationFunction
}

// Name implements PixelTransform.
func (r *Resize) Name() string { return fmt.Sprintf("resize(%dx%d)", r.Width, r.Height) }

func (r *Resize) units(_, _ int) int { return 1 }

// Apply implements PixelTransform. The whole resize counts as one unit.
func (r *Resize) Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	progress = sinkOrNop(progress)
	progress.TotalUnits(1)
	defer progress.Finished()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scaled := resize.Resize(uint(r.Width), uint(r.Height), src.ToNRGBA(), r.Interpolation)
	out, err := images.ReadRegion(scaled, scaled.Bounds())
	if err != nil {
		return nil, err
	}
	progress.UnitCompleted()
	return out, nil
}

// outputSize mirrors how resize.Resize derives a missing dimension.
func (r *Resize) outputSize(w, h int) (int, int) {
	switch {
	case r.Width == 0 && r.Height == 0:
		return w, h
	case r.Width == 0:
		scale := float64(h) / float64(r.Height)
		return int(0.7 + float64(w)/scale), r.Height
	case r.Height == 0:
		scale := float64(w) / float64(r.Width)
		return r.Width, int(0.7 + float64(h)/scale)
	}
	return r.Width, r.Height
}
