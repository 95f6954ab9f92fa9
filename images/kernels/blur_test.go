package kernels

import (
	"context"
	"image"
	"testing"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlurUniformIsFixedPoint(t *testing.T) {
	for _, radius := range []int{1, 2, 5, 40} {
		src := uniformPixels(17*9, 0x80402010)
		out, err := Blur(src, 17, 9, radius, nil)
		require.NoError(t, err)
		assert.Equal(t, src, out, "radius %d", radius)
	}
}

func TestBlurMatchesNaiveSeparable(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		radius        int
	}{
		{"square", 16, 16, 2},
		{"wide", 31, 7, 3},
		{"tall", 5, 23, 1},
		{"radius exceeds both dimensions", 4, 3, 9},
		{"single row", 12, 1, 2},
		{"single column", 1, 12, 2},
		{"single pixel", 1, 1, 3},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := randomPixels(int64(i+1), tt.width*tt.height)
			out, err := Blur(src, tt.width, tt.height, tt.radius, nil)
			require.NoError(t, err)
			require.Len(t, out, tt.width*tt.height)
			assert.Equal(t, naiveSeparable(src, tt.width, tt.height, tt.radius), out)
		})
	}
}

func TestBlurWithinOneOfTrueBoxAverage(t *testing.T) {
	const w, h, r = 23, 19, 3
	src := randomPixels(11, w*h)

	out, err := Blur(src, w, h, r, nil)
	require.NoError(t, err)

	want := naive2D(src, w, h, r)
	for i := range out {
		for _, s := range shifts {
			got, exact := channel(out[i], s), channel(want[i], s)
			assert.LessOrEqual(t, got, exact, "pixel %d shift %d", i, s)
			assert.GreaterOrEqual(t, got, exact-1, "pixel %d shift %d", i, s)
		}
	}
}

func TestBlurChannelsIndependent(t *testing.T) {
	const w, h = 20, 10
	src := randomPixels(5, w*h)
	for i := range src {
		src[i] &= 0x00ff0000
	}

	out, err := Blur(src, w, h, 3, nil)
	require.NoError(t, err)
	for i, p := range out {
		assert.Zero(t, p&0xff00ffff, "pixel %d leaked into another channel", i)
	}
}

func TestBlurLeavesSourceUntouched(t *testing.T) {
	src := randomPixels(9, 8*8)
	before := append([]uint32(nil), src...)

	_, err := Blur(src, 8, 8, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, before, src)
}

func TestBlurRadiusBelowOneActsAsOne(t *testing.T) {
	src := randomPixels(4, 10*6)
	one, err := Blur(src, 10, 6, 1, nil)
	require.NoError(t, err)

	for _, r := range []int{0, -5} {
		out, err := Blur(src, 10, 6, r, nil)
		require.NoError(t, err)
		assert.Equal(t, one, out, "radius %d", r)
	}
}

func TestBlurInvalidArguments(t *testing.T) {
	tests := []struct {
		name          string
		src           []uint32
		width, height int
	}{
		{"nil source", nil, 2, 2},
		{"zero width", make([]uint32, 4), 0, 4},
		{"negative height", make([]uint32, 4), 4, -1},
		{"short buffer", make([]uint32, 3), 2, 2},
		{"long buffer", make([]uint32, 5), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingProgress{}
			out, err := Blur(tt.src, tt.width, tt.height, 2, p)

			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrInvalidArgument), "got %v", err)
			assert.Equal(t, recordingProgress{}, *p, "no progress calls on rejected input")
		})
	}
}

func TestBlurProgressContract(t *testing.T) {
	const w, h = 13, 7
	p := &recordingProgress{}

	_, err := Blur(randomPixels(1, w*h), w, h, 2, p)
	require.NoError(t, err)

	assert.Equal(t, 1, p.totals)
	assert.Equal(t, w+h, p.total)
	assert.Equal(t, w+h, p.completed)
	assert.Equal(t, 1, p.finished)
}

func TestBlurParallelMatchesSequential(t *testing.T) {
	const w, h = 301, 257
	src := randomPixels(21, w*h)

	seq, err := BlurWithOptions(context.Background(), src, w, h, Options{Radius: 4})
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8} {
		p := &recordingProgress{}
		par, err := BlurWithOptions(context.Background(), src, w, h, Options{
			Radius:   4,
			Parallel: true,
			Workers:  workers,
			Progress: p,
		})
		require.NoError(t, err)
		assert.Equal(t, seq, par, "workers %d", workers)
		assert.Equal(t, w+h, p.completed, "workers %d", workers)
		assert.Equal(t, 1, p.finished)
	}
}

func TestBlurPooledMatchesUnpooled(t *testing.T) {
	pool := &Pool{}
	for i, size := range [][2]int{{40, 30}, {12, 50}, {40, 30}} {
		src := randomPixels(int64(i), size[0]*size[1])
		want, err := Blur(src, size[0], size[1], 3, nil)
		require.NoError(t, err)

		got, err := BlurWithOptions(context.Background(), src, size[0], size[1], Options{Radius: 3, Pool: pool})
		require.NoError(t, err)
		assert.Equal(t, want, got, "call %d", i)
	}
}

func TestPoolGet(t *testing.T) {
	var nilPool *Pool
	assert.Len(t, nilPool.Get(10), 10)
	nilPool.Put(make([]uint32, 4))

	pool := &Pool{}
	pool.Put(make([]uint32, 64))
	assert.Len(t, pool.Get(16), 16)
	assert.Len(t, pool.Get(128), 128)
}

func TestBlurCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &CountingProgress{}

	out, err := BlurWithOptions(ctx, randomPixels(1, 10*10), 10, 10, Options{Radius: 2, Progress: p})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, 0, p.Completed())
	assert.Equal(t, 1, p.FinishedCalls())
}

type cancelAfter struct {
	recordingProgress
	after  int
	cancel context.CancelFunc
}

func (c *cancelAfter) UnitCompleted() {
	c.recordingProgress.UnitCompleted()
	if c.completed == c.after {
		c.cancel()
	}
}

func TestBlurCanceledMidway(t *testing.T) {
	const w, h = 20, 20
	for _, parallel := range []bool{false, true} {
		ctx, cancel := context.WithCancel(context.Background())
		p := &cancelAfter{after: 5, cancel: cancel}

		out, err := BlurWithOptions(ctx, randomPixels(2, w*h), w, h, Options{
			Radius:   1,
			Parallel: parallel,
			Workers:  2,
			Progress: p,
		})
		cancel()

		assert.Nil(t, out)
		assert.True(t, errors.Is(err, context.Canceled), "parallel=%v got %v", parallel, err)
		assert.Less(t, p.completed, w+h)
		assert.Equal(t, 1, p.finished, "parallel=%v", parallel)
	}
}

func TestBlurRaster(t *testing.T) {
	r, err := images.RasterFromPixels(randomPixels(8, 9*6), 9, 6)
	require.NoError(t, err)

	out, err := BlurRaster(context.Background(), r, Options{Radius: 2})
	require.NoError(t, err)
	assert.Equal(t, 9, out.Width)
	assert.Equal(t, 6, out.Height)
	assert.Equal(t, naiveSeparable(r.Pix, 9, 6, 2), out.Pix)

	_, err = BlurRaster(context.Background(), nil, Options{})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestBlurRegions(t *testing.T) {
	const w, h = 30, 20
	r, err := images.RasterFromPixels(randomPixels(12, w*h), w, h)
	require.NoError(t, err)
	full := naiveSeparable(r.Pix, w, h, 2)

	regions := []image.Rectangle{
		image.Rect(2, 3, 10, 8),
		image.Rect(25, 15, 40, 40), // clipped
		image.Rect(-5, -5, -1, -1), // outside
	}
	out, err := BlurRegions(context.Background(), r, regions, Options{Radius: 2})
	require.NoError(t, err)

	inside := func(x, y int) bool {
		p := image.Pt(x, y)
		return p.In(regions[0]) || p.In(regions[1])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if inside(x, y) {
				assert.Equal(t, full[i], out.Pix[i], "(%d,%d) should be blurred", x, y)
			} else {
				assert.Equal(t, r.Pix[i], out.Pix[i], "(%d,%d) should be untouched", x, y)
			}
		}
	}
}

func TestChooseChunk(t *testing.T) {
	assert.Equal(t, 16, chooseChunk(20, 8))
	assert.Equal(t, 32, chooseChunk(1024, 8))
	assert.Equal(t, 128, chooseChunk(8192, 4))
}
