package seapack

// RasterizeMask burns a polygon set onto the grid as a dense uint8 mask.
// For each polygon only the row/column window covering its bounding box,
// padded by one cell and clamped to the raster, is visited. Cells already set
// by an earlier polygon are skipped; the result is the union of the per
// polygon coverage, so the visit order does not matter.
func RasterizeMask(polys []Polygon, grid Grid) []uint8 {
	rows := grid.Rows()
	cols := grid.Cols()
	mask := make([]uint8, rows*cols)

	for i := range polys {
		poly := &polys[i]

		r_start := clamp(grid.RowOf(poly.BBox.MinY)-1, 0, rows-1)
		r_end := clamp(grid.RowOf(poly.BBox.MaxY)+1, 0, rows-1)
		c_start := clamp(grid.ColOf(poly.BBox.MinX)-1, 0, cols-1)
		c_end := clamp(grid.ColOf(poly.BBox.MaxX)+1, 0, cols-1)

		for r := r_start; r <= r_end; r++ {
			lat := grid.Lat0 + float64(r)*grid.D
			for c := c_start; c <= c_end; c++ {
				idx := r*cols + c
				if mask[idx] != 0 {
					continue
				}
				lon := grid.Lon0 + float64(c)*grid.D
				if poly.Contains(lon, lat) {
					mask[idx] = 1
				}
			}
		}
	}

	return mask
}
