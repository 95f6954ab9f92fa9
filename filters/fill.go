package filters

import (
	"context"
	"fmt"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// Fill replaces every pixel with one packed ARGB colour.
type Fill struct {
	Color uint32
}

// Name implements PixelTransform.
func (f *Fill) Name() string { return fmt.Sprintf("fill(#%08x)", f.Color) }

func (f *Fill) units(_, h int) int { return h }

// Apply implements PixelTransform. Progress advances one unit per row.
func (f *Fill) Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	progress = sinkOrNop(progress)
	progress.TotalUnits(src.Height)
	defer progress.Finished()

	dst, err := images.NewRaster(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	row := dst.Pix[:src.Width]
	for i := range row {
		row[i] = f.Color
	}
	progress.UnitCompleted()
	for y := 1; y < src.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		copy(dst.Pix[y*src.Width:(y+1)*src.Width], row)
		progress.UnitCompleted()
	}
	return dst, nil
}
