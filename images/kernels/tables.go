package kernels

// buildDivisionTable maps every running-sum value a window of windowSize 8-bit
// samples can reach to its floor average, replacing a division per channel per
// output pixel with a table read.
func buildDivisionTable(windowSize int) []uint32 {
	table := make([]uint32, 256*windowSize)
	for i := range table {
		table[i] = uint32(i / windowSize)
	}
	return table
}

// buildEdgeIndexTable returns the source column to read for offsets 0..radius
// when priming the window at the start of a row. Offsets past the end of a row
// shorter than the radius clamp to width-1.
func buildEdgeIndexTable(width, radius int) []int {
	table := make([]int, radius+1)
	if radius < width {
		for i := range table {
			table[i] = i
		}
		return table
	}
	for i := 0; i < width; i++ {
		table[i] = i
	}
	for i := width; i < len(table); i++ {
		table[i] = width - 1
	}
	return table
}
