package kernels

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// DefaultGaussianPasses is the number of box passes used to approximate a
// Gaussian. Three passes keep the error under a few percent.
const DefaultGaussianPasses = 3

// GaussianBoxes returns the radii of n box blurs whose successive application
// approximates a Gaussian blur with standard deviation sigma.
//
// Box widths are the two odd integers bracketing the ideal width; the first m
// boxes use the smaller one, where m is chosen so the summed variance matches
// sigma². A radius of 0 means the box is the identity.
//
// Arguments:
//   - sigma: Standard deviation of the target Gaussian, in pixels.
//   - n: Number of boxes.
//
// Returns:
//   - []int: n radii, non-decreasing. Nil when sigma <= 0 or n < 1.
func GaussianBoxes(sigma float32, n int) []int {
	if sigma <= 0 || n < 1 {
		return nil
	}

	nf := float32(n)
	ideal := math32.Sqrt(12*sigma*sigma/nf + 1)
	lower := int(math32.Floor(ideal))
	if lower%2 == 0 {
		lower--
	}
	upper := lower + 2

	lf := float32(lower)
	m := int(math32.Floor((12*sigma*sigma-nf*lf*lf-4*nf*lf-3*nf)/(-4*lf-4) + 0.5))

	radii := make([]int, n)
	for i := range radii {
		width := upper
		if i < m {
			width = lower
		}
		radii[i] = (width - 1) / 2
	}
	return radii
}

// GaussianBlur approximates a Gaussian blur by chaining box blurs.
//
// Identity boxes are skipped. The progress sink in opt sees one budget covering
// every remaining pass and exactly one Finished call. opt.Radius is ignored.
func GaussianBlur(ctx context.Context, src []uint32, width, height int, sigma float32, passes int, opt Options) ([]uint32, error) {
	if err := validate(src, width, height); err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "sigma %v", sigma)
	}
	if passes < 1 {
		passes = DefaultGaussianPasses
	}

	var radii []int
	for _, r := range GaussianBoxes(sigma, passes) {
		if r > 0 {
			radii = append(radii, r)
		}
	}

	progress := opt.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	progress.TotalUnits(len(radii) * (width + height))
	defer progress.Finished()

	out := make([]uint32, len(src))
	copy(out, src)

	step := opt
	step.Progress = SubProgress(progress)
	for _, r := range radii {
		step.Radius = r
		next, err := BlurWithOptions(ctx, out, width, height, step)
		if err != nil {
			return nil, err
		}
		out = next
	}

	Logger().Debug("gaussian blur", "sigma", sigma, "radii", radii)
	return out, nil
}
