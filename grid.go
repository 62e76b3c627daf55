package seapack

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The derived row/column counts have to stay addressable with int32 indexing
// downstream (part offsets, TileDB dimension domains).
const maxGridCells = int64(1) << 31

// Grid defines a uniform latitude/longitude raster. The bounds are inclusive
// cell-centre coordinates; cell (r, c) has its centre at
// (Lat0 + r*D, Lon0 + c*D) with latitude as the slow axis.
type Grid struct {
	Lat0 float64 `json:"lat0"`
	Lat1 float64 `json:"lat1"`
	Lon0 float64 `json:"lon0"`
	Lon1 float64 `json:"lon1"`
	D    float64 `json:"d"`
}

// NewGrid constructs a Grid from the bounding coordinates and cell step.
// Inverted bounds, a non-positive step, or a raster too large to index
// are rejected.
func NewGrid(lat0, lat1, lon0, lon1, d float64) (Grid, error) {
	g := Grid{Lat0: lat0, Lat1: lat1, Lon0: lon0, Lon1: lon1, D: d}

	if lat0 < -90 || lat1 > 90 || lat0 > lat1 {
		return g, errors.Join(ErrInvalidGrid, fmt.Errorf("latitude bounds %v/%v", lat0, lat1))
	}
	if lon0 < -180 || lon1 > 180 || lon0 > lon1 {
		return g, errors.Join(ErrInvalidGrid, fmt.Errorf("longitude bounds %v/%v", lon0, lon1))
	}
	if d <= 0 {
		return g, errors.Join(ErrInvalidGrid, fmt.Errorf("step %v", d))
	}

	rows := int64(math.Round((lat1-lat0)/d)) + 1
	cols := int64(math.Round((lon1-lon0)/d)) + 1
	if rows > maxGridCells || cols > maxGridCells {
		return g, errors.Join(ErrInvalidGrid, fmt.Errorf("raster %dx%d too large", rows, cols))
	}

	return g, nil
}

// ParseGridSpec interprets a grid given as five slash separated floats,
// lat0/lat1/lon0/lon1/d. e.g. "30/60/-80/-10/0.5".
func ParseGridSpec(spec string) (Grid, error) {
	split := strings.Split(spec, "/")
	if len(split) != 5 {
		return Grid{}, errors.Join(ErrInvalidGrid, fmt.Errorf("grid spec %q", spec))
	}

	vals := make([]float64, 5)
	for i, s := range split {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Grid{}, errors.Join(ErrInvalidGrid, err)
		}
		vals[i] = v
	}

	return NewGrid(vals[0], vals[1], vals[2], vals[3], vals[4])
}

// Rows is the number of latitude cells.
func (g *Grid) Rows() int {
	return int(math.Round((g.Lat1-g.Lat0)/g.D)) + 1
}

// Cols is the number of longitude cells.
func (g *Grid) Cols() int {
	return int(math.Round((g.Lon1-g.Lon0)/g.D)) + 1
}

// Cells is the total cell count of the raster.
func (g *Grid) Cells() int {
	return g.Rows() * g.Cols()
}

// Lats returns the cell-centre latitudes, south to north.
func (g *Grid) Lats() []float64 {
	rows := g.Rows()
	lats := make([]float64, rows)
	for r := 0; r < rows; r++ {
		lats[r] = g.Lat0 + float64(r)*g.D
	}

	return lats
}

// Lons returns the cell-centre longitudes, west to east.
func (g *Grid) Lons() []float64 {
	cols := g.Cols()
	lons := make([]float64, cols)
	for c := 0; c < cols; c++ {
		lons[c] = g.Lon0 + float64(c)*g.D
	}

	return lons
}

// RowOf maps a latitude onto a row index. The result is unclamped; callers
// clamp to [0, Rows-1] where required.
func (g *Grid) RowOf(lat float64) int {
	return int(math.Floor((lat - g.Lat0) / g.D))
}

// ColOf maps a longitude onto a column index. The result is unclamped; callers
// clamp to [0, Cols-1] where required.
func (g *Grid) ColOf(lon float64) int {
	return int(math.Floor((lon - g.Lon0) / g.D))
}

// Spec formats the grid back into the slash separated CLI form.
func (g *Grid) Spec() string {
	return fmt.Sprintf("%v/%v/%v/%v/%v", g.Lat0, g.Lat1, g.Lon0, g.Lon1, g.D)
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
