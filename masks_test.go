package seapack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subset(t *testing.T, a, b []uint8) {
	t.Helper()
	require.Equal(t, len(a), len(b))
	for i := range a {
		if a[i] == 1 {
			require.Equal(t, uint8(1), b[i], "cell %d lost by dilation", i)
		}
	}
}

func TestDilateExtensive(t *testing.T) {
	mask := make([]uint8, 8*9)
	mask[3*9+4] = 1
	mask[0*9+0] = 1
	mask[7*9+8] = 1

	dilated := Dilate(mask, 8, 9, 1)
	subset(t, mask, dilated)

	// the centre cell grows a full 3x3 neighbourhood
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			assert.Equal(t, uint8(1), dilated[(3+dr)*9+(4+dc)])
		}
	}
	// corner cell is clipped at the edge
	assert.Equal(t, uint8(1), dilated[0*9+1])
	assert.Equal(t, uint8(1), dilated[1*9+1])
}

func TestDilateMonotone(t *testing.T) {
	a := make([]uint8, 6*6)
	b := make([]uint8, 6*6)
	a[2*6+2] = 1
	b[2*6+2] = 1
	b[4*6+1] = 1

	da := Dilate(a, 6, 6, 1)
	db := Dilate(b, 6, 6, 1)
	subset(t, da, db)
}

func TestDilateComposition(t *testing.T) {
	mask := make([]uint8, 10*10)
	mask[5*10+5] = 1
	mask[1*10+8] = 1

	twice := Dilate(mask, 10, 10, 2)
	once_then_once := Dilate(Dilate(mask, 10, 10, 1), 10, 10, 1)
	assert.Equal(t, once_then_once, twice)
}

func TestDilateZeroIterationsCopies(t *testing.T) {
	mask := []uint8{0, 1, 0, 1}
	out := Dilate(mask, 2, 2, 0)
	assert.Equal(t, mask, out)
	out[0] = 1
	assert.Equal(t, uint8(0), mask[0])
}

func TestSynthShallowMaskThreshold(t *testing.T) {
	grid, err := NewGrid(0, 60, -80, -10, 5)
	require.NoError(t, err)

	// the placeholder depth model gives 50m under 10 degrees, 30m under 30,
	// 15m beyond; with the default 20m threshold only the 15m bands qualify
	mask := SynthShallowMask(grid, 20.0)
	cols := grid.Cols()
	for r, lat := range grid.Lats() {
		want := uint8(0)
		if lat >= 30 {
			want = 1
		}
		assert.Equal(t, want, mask[r*cols+0], "lat %v", lat)
	}

	// a 10m threshold marks nothing
	none := SynthShallowMask(grid, 10.0)
	for _, v := range none {
		require.Equal(t, uint8(0), v)
	}
}

func TestSynthRestrictedMaskBox(t *testing.T) {
	grid, err := NewGrid(20, 35, -85, -70, 1)
	require.NoError(t, err)

	mask := SynthRestrictedMask(grid)
	cols := grid.Cols()
	for r, lat := range grid.Lats() {
		for c, lon := range grid.Lons() {
			want := uint8(0)
			if 25 < lat && lat < 30 && -80 < lon && lon < -75 {
				want = 1
			}
			require.Equal(t, want, mask[r*cols+c], "(%v,%v)", lat, lon)
		}
	}
}

func TestBuildMasksUsesCoastlineWhenPresent(t *testing.T) {
	grid, err := NewGrid(-2, 2, -2, 2, 1)
	require.NoError(t, err)

	poly := NewPolygon(NewRing(closedSquare(-1, -1, 1, 1)), nil)
	masks := BuildMasks(grid, 20.0, []Polygon{poly}, 0)

	require.Contains(t, masks, MaskLand)
	require.Contains(t, masks, MaskShallow)
	require.Contains(t, masks, MaskRestricted)
	assert.Equal(t, RasterizeMask([]Polygon{poly}, grid), masks[MaskLand])
}
