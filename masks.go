package seapack

import (
	"math"
)

// Mask kinds, also the fixed output order for the pack files.
const (
	MaskLand       = "land"
	MaskShallow    = "shallow"
	MaskRestricted = "restricted"
)

// MaskKinds lists the mask kinds in their serialisation order.
var MaskKinds = []string{MaskLand, MaskShallow, MaskRestricted}

// SynthLandMask approximates land coverage with coarse latitude/longitude
// boxes; polar caps plus North America, Europe and Asia. It is a placeholder
// for builds without coastline data; production packs rasterise a coastline
// shapefile instead.
func SynthLandMask(grid Grid) []uint8 {
	lats := grid.Lats()
	lons := grid.Lons()
	mask := make([]uint8, len(lats)*len(lons))

	for r, lat := range lats {
		for c, lon := range lons {
			land := false
			switch {
			case lat > 60 || lat < -60:
				land = true
			case 20 < lat && lat < 50 && -80 < lon && lon < -10:
				land = true
			case 35 < lat && lat < 70 && -10 < lon && lon < 40:
				land = true
			case 10 < lat && lat < 60 && 100 < lon && lon < 180:
				land = true
			}
			if land {
				mask[r*len(lons)+c] = 1
			}
		}
	}

	return mask
}

// SynthShallowMask marks cells whose modelled depth falls under the
// threshold. The depth model is a latitude band placeholder; production
// builds would sample real bathymetry such as GEBCO.
func SynthShallowMask(grid Grid, depth_threshold float64) []uint8 {
	lats := grid.Lats()
	lons := grid.Lons()
	mask := make([]uint8, len(lats)*len(lons))

	for r, lat := range lats {
		var depth float64
		switch {
		case math.Abs(lat) < 10:
			depth = 50
		case math.Abs(lat) < 30:
			depth = 30
		default:
			depth = 15
		}
		if depth < depth_threshold {
			for c := range lons {
				mask[r*len(lons)+c] = 1
			}
		}
	}

	return mask
}

// SynthRestrictedMask marks regulatory exclusion areas. Only a single
// demonstration box is present; production builds would rasterise the actual
// restricted-area polygons.
func SynthRestrictedMask(grid Grid) []uint8 {
	lats := grid.Lats()
	lons := grid.Lons()
	mask := make([]uint8, len(lats)*len(lons))

	for r, lat := range lats {
		if lat <= 25 || lat >= 30 {
			continue
		}
		for c, lon := range lons {
			if -80 < lon && lon < -75 {
				mask[r*len(lons)+c] = 1
			}
		}
	}

	return mask
}

// Dilate applies 8-connected binary dilation with a 3x3 all-ones structuring
// element, iterations times. A cell is set when any cell of its 3x3
// neighbourhood is set; the neighbourhood is clipped at the raster edges.
// The input mask is not modified.
func Dilate(mask []uint8, rows, cols, iterations int) []uint8 {
	src := mask
	for n := 0; n < iterations; n++ {
		dst := make([]uint8, len(src))
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				set := uint8(0)
				for dr := -1; dr <= 1 && set == 0; dr++ {
					rr := r + dr
					if rr < 0 || rr >= rows {
						continue
					}
					for dc := -1; dc <= 1; dc++ {
						cc := c + dc
						if cc < 0 || cc >= cols {
							continue
						}
						if src[rr*cols+cc] != 0 {
							set = 1
							break
						}
					}
				}
				dst[r*cols+c] = set
			}
		}
		src = dst
	}

	if iterations == 0 {
		// keep the no-modification contract
		out := make([]uint8, len(mask))
		copy(out, mask)
		return out
	}

	return src
}

// BuildMasks produces the dilated land, shallow and restricted masks for a
// build. When coastline polygons are supplied the land mask is rasterised
// from them, otherwise the placeholder rule is used.
func BuildMasks(grid Grid, depth_threshold float64, coastline []Polygon, dilations int) map[string][]uint8 {
	rows := grid.Rows()
	cols := grid.Cols()

	var land []uint8
	if len(coastline) > 0 {
		land = RasterizeMask(coastline, grid)
	} else {
		land = SynthLandMask(grid)
	}

	masks := map[string][]uint8{
		MaskLand:       Dilate(land, rows, cols, dilations),
		MaskShallow:    Dilate(SynthShallowMask(grid, depth_threshold), rows, cols, dilations),
		MaskRestricted: Dilate(SynthRestrictedMask(grid), rows, cols, dilations),
	}

	return masks
}
