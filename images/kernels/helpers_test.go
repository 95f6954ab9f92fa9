package kernels

import (
	"math/rand"
)

func randomPixels(seed int64, n int) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint32, n)
	for i := range pix {
		pix[i] = rng.Uint32()
	}
	return pix
}

func uniformPixels(n int, argb uint32) []uint32 {
	pix := make([]uint32, n)
	for i := range pix {
		pix[i] = argb
	}
	return pix
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func channel(p uint32, shift uint) int {
	return int(p >> shift & 0xff)
}

var shifts = [4]uint{24, 16, 8, 0}

// naiveSeparable blurs horizontally then vertically with an explicit window
// sum per pixel, flooring after each pass.
func naiveSeparable(src []uint32, w, h, r int) []uint32 {
	k := 2*r + 1
	tmp := make([]uint32, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var out uint32
			for _, s := range shifts {
				sum := 0
				for d := -r; d <= r; d++ {
					sum += channel(src[y*w+clamp(x+d, 0, w-1)], s)
				}
				out |= uint32(sum/k) << s
			}
			tmp[y*w+x] = out
		}
	}
	dst := make([]uint32, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var out uint32
			for _, s := range shifts {
				sum := 0
				for d := -r; d <= r; d++ {
					sum += channel(tmp[clamp(y+d, 0, h-1)*w+x], s)
				}
				out |= uint32(sum/k) << s
			}
			dst[y*w+x] = out
		}
	}
	return dst
}

// naive2D averages the full (2r+1)² clamped neighbourhood with one floor.
func naive2D(src []uint32, w, h, r int) []uint32 {
	k := 2*r + 1
	dst := make([]uint32, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var out uint32
			for _, s := range shifts {
				sum := 0
				for dy := -r; dy <= r; dy++ {
					for dx := -r; dx <= r; dx++ {
						sum += channel(src[clamp(y+dy, 0, h-1)*w+clamp(x+dx, 0, w-1)], s)
					}
				}
				out |= uint32(sum/(k*k)) << s
			}
			dst[y*w+x] = out
		}
	}
	return dst
}

// recordingProgress is deliberately not safe for concurrent use.
type recordingProgress struct {
	total     int
	totals    int
	completed int
	finished  int
}

func (p *recordingProgress) TotalUnits(n int) { p.total = n; p.totals++ }
func (p *recordingProgress) UnitCompleted()   { p.completed++ }
func (p *recordingProgress) Finished()        { p.finished++ }
