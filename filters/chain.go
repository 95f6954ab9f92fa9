package filters

import (
	"context"
	"strings"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/pkg/errors"
)

// Chain applies its transforms in order, feeding each output to the next.
// An empty chain returns a copy of its input.
type Chain struct {
	Transforms []PixelTransform
}

// Name implements PixelTransform.
func (c *Chain) Name() string {
	names := make([]string, len(c.Transforms))
	for i, t := range c.Transforms {
		names[i] = t.Name()
	}
	return strings.Join(names, " | ")
}

// units sums member budgets. Sizes are tracked through resizes so the budget
// matches what each member reports.
func (c *Chain) units(w, h int) int {
	total := 0
	for _, t := range c.Transforms {
		total += Units(t, w, h)
		if r, ok := t.(*Resize); ok {
			w, h = r.outputSize(w, h)
		}
	}
	return total
}

// Apply implements PixelTransform. progress sees a single budget covering all
// members and one Finished call.
func (c *Chain) Apply(ctx context.Context, src *images.Raster, progress kernels.ProgressSink) (*images.Raster, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	progress = sinkOrNop(progress)
	progress.TotalUnits(c.units(src.Width, src.Height))
	defer progress.Finished()

	sub := kernels.SubProgress(progress)
	out := src.Clone()
	for _, t := range c.Transforms {
		next, err := t.Apply(ctx, out, sub)
		if err != nil {
			return nil, errors.Wrap(err, t.Name())
		}
		kernels.Logger().Debug("filter applied", "filter", t.Name(), "raster", next.String())
		out = next
	}
	return out, nil
}
