package kernels

import (
	"context"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
)

// DefaultRadius is the radius used when a caller has no preference.
const DefaultRadius = 3

// ErrInvalidArgument is returned when the source buffer or its dimensions are malformed.
var ErrInvalidArgument = errors.New("invalid argument")

// Options configures a blur call.
type Options struct {
	// Radius is the blur radius; the window spans 2*Radius+1 pixels. Values
	// below 1 are treated as 1.
	Radius int
	// Parallel splits the rows of each pass across goroutines.
	Parallel bool
	// Workers caps the goroutines used when Parallel is set. Zero means runtime.NumCPU().
	Workers int
	// Pool lets callers reuse the intermediate buffer between calls.
	Pool *Pool
	// Progress receives per-row progress. Nil disables reporting.
	Progress ProgressSink
}

// Pool lets callers reuse large scratch buffers to reduce GC pressure when
// blurring frames at video rates.
type Pool struct {
	buffers sync.Pool // *[]uint32
}

// Get returns a buffer of exactly n pixels. Its contents are undefined.
func (p *Pool) Get(n int) []uint32 {
	if p == nil {
		return make([]uint32, n)
	}
	if v := p.buffers.Get(); v != nil {
		buf := *(v.(*[]uint32))
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]uint32, n)
}

// Put hands a buffer back for reuse. The next writer fully overwrites it.
func (p *Pool) Put(buf []uint32) {
	if p == nil || buf == nil {
		return
	}
	p.buffers.Put(&buf)
}

// Blur applies a box blur of the given radius to a packed ARGB raster and
// returns a new raster of the same size.
//
// The blur runs as two sliding-window passes, each costing O(width*height)
// regardless of radius. Pixels beyond the image edge repeat the nearest edge
// pixel; callers wanting artifact-free borders must pad the source first.
//
// Arguments:
//   - src: width*height pixels, row-major, [A:8][R:8][G:8][B:8]. Not modified.
//   - width: Pixels per row.
//   - height: Number of rows.
//   - radius: Blur radius, coerced to at least 1.
//   - progress: Receives width+height units of work. May be nil.
//
// Returns:
//   - []uint32: The blurred pixels in the original orientation.
//   - error: ErrInvalidArgument for malformed input, before any allocation.
//
// @example
//
//	blurred, err := kernels.Blur(pix, 640, 480, 3, nil)
//	if err != nil {
//	    return err
//	}
func Blur(src []uint32, width, height, radius int, progress ProgressSink) ([]uint32, error) {
	return BlurWithOptions(context.Background(), src, width, height, Options{
		Radius:   radius,
		Progress: progress,
	})
}

// BlurWithOptions is Blur with parallelism, buffer pooling and cooperative
// cancellation. ctx is checked between rows; a canceled call returns the
// context error and no pixels, and still signals Finished to the progress sink.
func BlurWithOptions(ctx context.Context, src []uint32, width, height int, opt Options) ([]uint32, error) {
	if err := validate(src, width, height); err != nil {
		return nil, err
	}

	radius := opt.Radius
	if radius < 1 {
		radius = 1
	}

	progress := opt.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	if opt.Parallel {
		progress = syncProgress(progress)
	}

	progress.TotalUnits(width + height)
	defer progress.Finished()

	start := time.Now()
	n := width * height
	tmp := opt.Pool.Get(n)
	defer opt.Pool.Put(tmp)
	dst := make([]uint32, n)

	// Horizontal pass writes tmp transposed (height x width).
	if err := runPass(ctx, src, tmp, width, height, radius, opt, progress); err != nil {
		return nil, err
	}
	// Vertical pass blurs the former columns and transposes back.
	if err := runPass(ctx, tmp, dst, height, width, radius, opt, progress); err != nil {
		return nil, err
	}

	Logger().Debug("box blur",
		"width", width,
		"height", height,
		"radius", radius,
		"parallel", opt.Parallel,
		"elapsed", time.Since(start))

	return dst, nil
}

// BlurRaster blurs r into a new raster.
func BlurRaster(ctx context.Context, r *images.Raster, opt Options) (*images.Raster, error) {
	if r == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "raster is nil")
	}
	pix, err := BlurWithOptions(ctx, r.Pix, r.Width, r.Height, opt)
	if err != nil {
		return nil, err
	}
	return &images.Raster{Pix: pix, Width: r.Width, Height: r.Height}, nil
}

// BlurRegions blurs only the given regions by compositing from a blurred copy.
// This costs one full-frame blur plus a few rectangle copies. Regions are
// clipped to the raster; overlapping regions are handled naturally.
func BlurRegions(ctx context.Context, r *images.Raster, regions []image.Rectangle, opt Options) (*images.Raster, error) {
	blurred, err := BlurRaster(ctx, r, opt)
	if err != nil {
		return nil, err
	}

	out := r.Clone()
	bounds := image.Rect(0, 0, r.Width, r.Height)
	for _, region := range regions {
		region = region.Intersect(bounds)
		if region.Empty() {
			continue
		}
		for y := region.Min.Y; y < region.Max.Y; y++ {
			off := y*r.Width + region.Min.X
			copy(out.Pix[off:off+region.Dx()], blurred.Pix[off:off+region.Dx()])
		}
	}
	return out, nil
}

func validate(src []uint32, width, height int) error {
	if src == nil {
		return errors.Wrap(ErrInvalidArgument, "source buffer is nil")
	}
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "dimensions %dx%d", width, height)
	}
	if len(src) != width*height {
		return errors.Wrapf(ErrInvalidArgument, "source has %d pixels, want %dx%d=%d", len(src), width, height, width*height)
	}
	return nil
}

// runPass blurs all rows of src into dst (transposed). Pass 2 must not start
// before this returns: every one of its rows reads a column written by every
// row of this pass.
func runPass(ctx context.Context, src, dst []uint32, width, height, radius int, opt Options, progress ProgressSink) error {
	pass := newRowPass(src, dst, width, height, radius)

	var stop func() bool
	if ctx.Done() != nil {
		stop = func() bool { return ctx.Err() != nil }
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if !opt.Parallel || workers == 1 || height < 4 {
		pass.run(0, height, progress, stop)
		return passError(ctx)
	}

	// Split rows into chunks; each worker writes a disjoint set of columns of dst.
	chunk := chooseChunk(height, workers)
	var wg sync.WaitGroup
	for s := 0; s < height; s += chunk {
		e := s + chunk
		if e > height {
			e = height
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			pass.run(s, e, progress, stop)
		}(s, e)
	}
	wg.Wait()
	return passError(ctx)
}

func passError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "blur canceled")
	}
	return nil
}

// chooseChunk picks a row chunk size that gives every worker a few chunks while
// keeping chunks large enough to amortize goroutine start-up.
func chooseChunk(rows, workers int) int {
	chunk := rows / (workers * 4)
	switch {
	case chunk < 16:
		chunk = 16
	case chunk > 128:
		chunk = 128
	}
	return chunk
}
