package seapack

import (
	"math"
)

// Point is a single lon/lat vertex. X is longitude, Y is latitude, matching
// the shapefile coordinate order.
type Point struct {
	X float64
	Y float64
}

// Ring is a closed sequence of vertices (first == last) with the signed area
// cached. A positive area means counter-clockwise winding (an outer ring),
// negative means clockwise (a hole).
type Ring struct {
	Points []Point
	Area   float64
}

// NewRing caches the signed area for the supplied vertices.
func NewRing(points []Point) Ring {
	return Ring{Points: points, Area: SignedArea(points)}
}

// Clockwise reports whether the ring winds clockwise.
func (r *Ring) Clockwise() bool {
	return r.Area < 0
}

// SignedArea computes the shoelace area of a vertex sequence, closing the
// loop from the last point back to the first.
func SignedArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0.0
	}

	area := 0.0
	for i := 0; i < n-1; i++ {
		area += points[i].X*points[i+1].Y - points[i+1].X*points[i].Y
	}
	area += points[n-1].X*points[0].Y - points[0].X*points[n-1].Y

	return 0.5 * area
}

// BBox is an axis aligned bounding box in lon/lat space.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Polygon is one outer ring with zero or more hole rings. The bounding box of
// the outer ring is cached for cheap rejection during rasterisation.
type Polygon struct {
	Outer Ring
	Holes []Ring
	BBox  BBox
}

// NewPolygon caches the outer ring's bounding box.
func NewPolygon(outer Ring, holes []Ring) Polygon {
	bbox := BBox{
		MinX: outer.Points[0].X,
		MinY: outer.Points[0].Y,
		MaxX: outer.Points[0].X,
		MaxY: outer.Points[0].Y,
	}
	for _, p := range outer.Points[1:] {
		if p.X < bbox.MinX {
			bbox.MinX = p.X
		}
		if p.X > bbox.MaxX {
			bbox.MaxX = p.X
		}
		if p.Y < bbox.MinY {
			bbox.MinY = p.Y
		}
		if p.Y > bbox.MaxY {
			bbox.MaxY = p.Y
		}
	}

	return Polygon{Outer: outer, Holes: holes, BBox: bbox}
}

// pointInRing casts a horizontal ray to the east and toggles on every edge
// crossing. The epsilon keeps the intercept finite on horizontal edges; such
// edges never satisfy the ordinate straddle test anyway. The closing edge
// (last vertex back to the first) is evaluated explicitly so open and closed
// vertex sequences behave the same.
func pointInRing(x, y float64, ring *Ring) bool {
	const eps = 1e-15

	pts := ring.Points
	n := len(pts)
	inside := false

	for i := 0; i < n-1; i++ {
		x1, y1 := pts[i].X, pts[i].Y
		x2, y2 := pts[i+1].X, pts[i+1].Y
		if (y1 > y) != (y2 > y) {
			xint := (x2-x1)*(y-y1)/(y2-y1+eps) + x1
			if xint > x {
				inside = !inside
			}
		}
	}

	x1, y1 := pts[n-1].X, pts[n-1].Y
	x2, y2 := pts[0].X, pts[0].Y
	if (y1 > y) != (y2 > y) {
		xint := (x2-x1)*(y-y1)/(y2-y1+eps) + x1
		if xint > x {
			inside = !inside
		}
	}

	return inside
}

// pointOnRing reports whether the point lies on one of the ring's edges,
// including the closing edge.
func pointOnRing(x, y float64, ring *Ring) bool {
	const tol = 1e-12

	pts := ring.Points
	n := len(pts)
	for i := 0; i < n; i++ {
		x1, y1 := pts[i].X, pts[i].Y
		x2, y2 := pts[(i+1)%n].X, pts[(i+1)%n].Y

		if x < math.Min(x1, x2)-tol || x > math.Max(x1, x2)+tol {
			continue
		}
		if y < math.Min(y1, y2)-tol || y > math.Max(y1, y2)+tol {
			continue
		}
		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if math.Abs(cross) <= tol {
			return true
		}
	}

	return false
}

// Contains tests whether the lon/lat point sits inside the polygon; inside
// the outer ring and inside none of the holes. The bounding box is checked
// first. Boundary points count as inside; the ray cast alone would exclude
// the north and east edges, and a cell centre sitting exactly on a coastline
// must classify as land.
func (p *Polygon) Contains(x, y float64) bool {
	if len(p.Outer.Points) == 0 {
		return false
	}
	if x < p.BBox.MinX || x > p.BBox.MaxX || y < p.BBox.MinY || y > p.BBox.MaxY {
		return false
	}
	if pointOnRing(x, y, &p.Outer) {
		return true
	}
	if !pointInRing(x, y, &p.Outer) {
		return false
	}
	for i := range p.Holes {
		if pointOnRing(x, y, &p.Holes[i]) {
			return true
		}
		if pointInRing(x, y, &p.Holes[i]) {
			return false
		}
	}

	return true
}

// AssemblePolygons groups a file-ordered ring sequence into polygons.
// A counter-clockwise ring starts a new polygon (emitting the previous one),
// clockwise rings become holes of the current outer. Holes appearing before
// any outer ring are dropped.
func AssemblePolygons(rings []Ring) []Polygon {
	var (
		polys   []Polygon
		current *Ring
		holes   []Ring
	)

	for i := range rings {
		ring := rings[i]
		if ring.Clockwise() {
			if current == nil {
				continue
			}
			holes = append(holes, ring)
		} else {
			if current != nil {
				polys = append(polys, NewPolygon(*current, holes))
				holes = nil
			}
			current = &rings[i]
		}
	}
	if current != nil {
		polys = append(polys, NewPolygon(*current, holes))
	}

	return polys
}
