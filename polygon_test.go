package seapack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// closedSquare builds a counter-clockwise square ring from (x0,y0) to
// (x1,y1), first point repeated last.
func closedSquare(x0, y0, x1, y1 float64) []Point {
	return []Point{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}
}

func reversed(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

func TestSignedAreaOrientation(t *testing.T) {
	square := closedSquare(0, 0, 10, 10)

	area := SignedArea(square)
	assert.Equal(t, 100.0, area)
	assert.Equal(t, -area, SignedArea(reversed(square)))

	ring := NewRing(square)
	assert.False(t, ring.Clockwise())
	hole := NewRing(reversed(square))
	assert.True(t, hole.Clockwise())
}

func TestPointInPolygonWithHole(t *testing.T) {
	outer := NewRing(closedSquare(0, 0, 10, 10))
	hole := NewRing(reversed(closedSquare(3, 3, 7, 7)))
	poly := NewPolygon(outer, []Ring{hole})

	assert.False(t, poly.Contains(5, 5), "inside the hole")
	assert.True(t, poly.Contains(1, 1), "inside the outer ring")
	assert.False(t, poly.Contains(11, 5), "outside the bounding box")
	assert.False(t, poly.Contains(-1, 5))
}

func TestPolygonContainsBoundary(t *testing.T) {
	poly := NewPolygon(NewRing(closedSquare(-1, -1, 1, 1)), nil)

	// every edge and corner classifies as inside, the ray cast alone would
	// drop the north and east edges
	boundary := []Point{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
		{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: 0},
	}
	for _, p := range boundary {
		assert.True(t, poly.Contains(p.X, p.Y), "boundary point (%v,%v)", p.X, p.Y)
	}
	assert.False(t, poly.Contains(1.001, 0))
}

func TestPolygonContainsOpenRing(t *testing.T) {
	// same square without the repeated closing vertex; the closing edge is
	// evaluated explicitly by the ray cast
	open := NewRing(closedSquare(0, 0, 10, 10)[:4])
	poly := NewPolygon(open, nil)

	assert.True(t, poly.Contains(5, 5))
	assert.False(t, poly.Contains(11, 5))
}

func TestAssemblePolygons(t *testing.T) {
	outer_a := NewRing(closedSquare(0, 0, 10, 10))
	hole_a := NewRing(reversed(closedSquare(3, 3, 7, 7)))
	outer_b := NewRing(closedSquare(20, 20, 30, 30))

	polys := AssemblePolygons([]Ring{outer_a, hole_a, outer_b})
	require.Len(t, polys, 2)
	assert.Len(t, polys[0].Holes, 1)
	assert.Empty(t, polys[1].Holes)
	assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, polys[0].BBox)
	assert.Equal(t, BBox{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30}, polys[1].BBox)
}

func TestAssemblePolygonsDropsLeadingHoles(t *testing.T) {
	hole := NewRing(reversed(closedSquare(3, 3, 7, 7)))
	outer := NewRing(closedSquare(0, 0, 10, 10))

	polys := AssemblePolygons([]Ring{hole, outer})
	require.Len(t, polys, 1)
	assert.Empty(t, polys[0].Holes)
}
