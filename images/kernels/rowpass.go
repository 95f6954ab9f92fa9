package kernels

// rowPass blurs every row of a width x height raster with a sliding window and
// writes the result transposed: the output for (row, col) lands at
// col*height + row. Running the pass again with swapped dimensions blurs the
// other axis and restores the original orientation.
//
// The lookup tables are built once per pass and are read-only afterwards, so
// disjoint row ranges may run on separate goroutines.
type rowPass struct {
	src, dst []uint32
	width    int
	height   int
	radius   int
	div      []uint32
	edge     []int

	// stats is only set by tests running a single goroutine.
	stats *passStats
}

// passStats counts loop iterations actually executed by a pass.
type passStats struct {
	rows      int
	initReads int
	slides    int
}

func newRowPass(src, dst []uint32, width, height, radius int) *rowPass {
	return &rowPass{
		src:    src,
		dst:    dst,
		width:  width,
		height: height,
		radius: radius,
		div:    buildDivisionTable(2*radius + 1),
		edge:   buildEdgeIndexTable(width, radius),
	}
}

// run blurs rows [y0, y1). It reports one unit per row to progress and checks
// stop before each row. It returns the number of rows completed.
func (p *rowPass) run(y0, y1 int, progress ProgressSink, stop func() bool) int {
	done := 0
	for y := y0; y < y1; y++ {
		if stop != nil && stop() {
			return done
		}
		p.blurRow(y)
		done++
		progress.UnitCompleted()
	}
	return done
}

func (p *rowPass) blurRow(y int) {
	width, height, radius := p.width, p.height, p.radius
	div, edge := p.div, p.edge

	start := y * width
	row := p.src[start : start+width : start+width]

	// The first pixel stands in for itself and the radius clamped pixels left of it.
	weight := uint32(radius + 1)
	pixel := row[0]
	sumA := weight * (pixel >> 24)
	sumR := weight * (pixel >> 16 & 0xff)
	sumG := weight * (pixel >> 8 & 0xff)
	sumB := weight * (pixel & 0xff)

	reads := radius
	if reads > width-1 {
		reads = width - 1
	}
	i := 1
	for ; i <= reads; i++ {
		pixel = row[edge[i]]
		sumA += pixel >> 24
		sumR += pixel >> 16 & 0xff
		sumG += pixel >> 8 & 0xff
		sumB += pixel & 0xff
	}
	// Offsets past the row end all clamp to the last pixel.
	if tail := radius - reads; tail > 0 {
		pixel = row[edge[radius]]
		t := uint32(tail)
		sumA += t * (pixel >> 24)
		sumR += t * (pixel >> 16 & 0xff)
		sumG += t * (pixel >> 8 & 0xff)
		sumB += t * (pixel & 0xff)
	}

	dst := p.dst
	dstIndex := y
	last := width - 1

	x := 0
	for ; x < width; x++ {
		dst[dstIndex] = div[sumA]<<24 | div[sumR]<<16 | div[sumG]<<8 | div[sumB]
		dstIndex += height

		next := x + radius + 1
		if next > last {
			next = last
		}
		prev := x - radius
		if prev < 0 {
			prev = 0
		}

		np, pp := row[next], row[prev]
		sumA += np >> 24
		sumA -= pp >> 24
		sumR += np >> 16 & 0xff
		sumR -= pp >> 16 & 0xff
		sumG += np >> 8 & 0xff
		sumG -= pp >> 8 & 0xff
		sumB += np & 0xff
		sumB -= pp & 0xff
	}

	if p.stats != nil {
		p.stats.rows++
		p.stats.initReads += i - 1
		p.stats.slides += x
	}
}

// blurRows runs a full sequential pass over src.
func blurRows(src, dst []uint32, width, height, radius int, progress ProgressSink) {
	newRowPass(src, dst, width, height, radius).run(0, height, progress, nil)
}
