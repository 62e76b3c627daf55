package seapack

import (
	"sort"
)

// axisWeights locates coord within an ascending axis and returns the two
// bracketing sample indices plus the fractional weight of the upper one.
// Coordinates outside the axis clamp to the nearest edge sample, which gives
// the edge-extrapolation behaviour: the value at the nearest interior point.
func axisWeights(axis []float64, coord float64) (i0, i1 int, w float64) {
	n := len(axis)
	if n == 1 || coord <= axis[0] {
		return 0, 0, 0.0
	}
	if coord >= axis[n-1] {
		return n - 1, n - 1, 0.0
	}

	// first index with axis[i] >= coord
	hi := sort.SearchFloat64s(axis, coord)
	if axis[hi] == coord {
		return hi, hi, 0.0
	}
	lo := hi - 1

	span := axis[hi] - axis[lo]
	if span <= 0 {
		return lo, lo, 0.0
	}

	return lo, hi, (coord - axis[lo]) / span
}

// Bilinear resamples one source plane (row-major, latitude slow on the
// source axes) onto the target grid with bilinear interpolation.
func Bilinear(plane []float32, src_lats, src_lons []float64, grid Grid) []float32 {
	rows := grid.Rows()
	cols := grid.Cols()
	ncols_src := len(src_lons)
	out := make([]float32, rows*cols)

	// longitude weights are identical for every output row
	type colWeight struct {
		c0, c1 int
		w      float64
	}
	col_weights := make([]colWeight, cols)
	for c, lon := range grid.Lons() {
		c0, c1, w := axisWeights(src_lons, lon)
		col_weights[c] = colWeight{c0: c0, c1: c1, w: w}
	}

	for r, lat := range grid.Lats() {
		r0, r1, wr := axisWeights(src_lats, lat)
		row0 := plane[r0*ncols_src : (r0+1)*ncols_src]
		row1 := plane[r1*ncols_src : (r1+1)*ncols_src]

		for c := 0; c < cols; c++ {
			cw := col_weights[c]

			v00 := float64(row0[cw.c0])
			v01 := float64(row0[cw.c1])
			v10 := float64(row1[cw.c0])
			v11 := float64(row1[cw.c1])

			top := v00 + (v01-v00)*cw.w
			bottom := v10 + (v11-v10)*cw.w
			out[r*cols+c] = float32(top + (bottom-top)*wr)
		}
	}

	return out
}
