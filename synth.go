package seapack

import (
	"math"
	"path/filepath"
	"time"
)

// SyntheticSources are the filenames WriteSyntheticSources produces, keyed
// by source kind.
var SyntheticSources = map[SourceKind]string{
	SourceWind:    "wind_test.ssg",
	SourceWave:    "wave_test.ssg",
	SourceCurrent: "current_test.ssg",
}

// synthPlane evaluates a smooth deterministic field over the source axes;
// a base level plus a low frequency lon/lat swell. Deterministic so repeated
// generator runs produce identical files.
func synthPlane(lats, lons []float64, base, amplitude float64) []float32 {
	plane := make([]float32, len(lats)*len(lons))
	for r, lat := range lats {
		for c, lon := range lons {
			v := base + amplitude*math.Sin(lat*math.Pi/45)*math.Cos(lon*math.Pi/60)
			plane[r*len(lons)+c] = float32(v)
		}
	}

	return plane
}

// WriteSyntheticSources writes one wind, wave and current GridSource file
// onto the supplied grid, for exercising the build pipeline without real
// model output. Returns the three paths in wind/wave/current order.
func WriteSyntheticSources(dir string, grid Grid, cycle time.Time) ([]string, error) {
	lats := grid.Lats()
	lons := grid.Lons()
	times := []time.Time{cycle.UTC()}

	type synthVar struct {
		name      string
		base      float64
		amplitude float64
	}
	sources := []struct {
		kind SourceKind
		vars []synthVar
	}{
		{kind: SourceWind, vars: []synthVar{
			{name: "u", base: 5.0, amplitude: 3.0},
			{name: "v", base: 2.0, amplitude: 2.0},
		}},
		{kind: SourceWave, vars: []synthVar{
			{name: "hs", base: 2.0, amplitude: 1.5},
			{name: "tp", base: 8.0, amplitude: 2.0},
			{name: "dir", base: 180.0, amplitude: 90.0},
		}},
		{kind: SourceCurrent, vars: []synthVar{
			{name: "water_u", base: 0.1, amplitude: 0.05},
			{name: "water_v", base: 0.05, amplitude: 0.03},
		}},
	}

	paths := make([]string, 0, len(sources))
	for _, source := range sources {
		src := &GridSource{Lats: lats, Lons: lons, Times: times}
		for _, v := range source.vars {
			err := src.AddVar(v.name, synthPlane(lats, lons, v.base, v.amplitude))
			if err != nil {
				return nil, err
			}
		}

		path := filepath.Join(dir, SyntheticSources[source.kind])
		err := WriteGridSource(path, src)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}
