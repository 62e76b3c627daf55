package seapack

import (
	"errors"
	"fmt"
)

// SourceKind tags the logical upstream model feeding a source file.
type SourceKind int

const (
	SourceWind SourceKind = iota
	SourceWave
	SourceCurrent
)

// String names the source kind for logging.
func (k SourceKind) String() string {
	switch k {
	case SourceWind:
		return "wind"
	case SourceWave:
		return "wave"
	case SourceCurrent:
		return "current"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// varMapping pairs an upstream variable name with the pack field it becomes.
type varMapping struct {
	raw   string
	field string
}

// kindSchemas fixes, per source kind, which upstream variables are required
// and what the resulting pack fields are called. The raw names follow the
// conventions of the upstream models (GFS wind components, WW3 wave
// parameters, HYCOM water velocities).
var kindSchemas = map[SourceKind][]varMapping{
	SourceWind: {
		{raw: "u", field: "wind_u"},
		{raw: "v", field: "wind_v"},
	},
	SourceWave: {
		{raw: "hs", field: "wave_hs"},
		{raw: "tp", field: "wave_tp"},
		{raw: "dir", field: "wave_dir"},
	},
	SourceCurrent: {
		{raw: "water_u", field: "cur_u"},
		{raw: "water_v", field: "cur_v"},
	},
}

// Field is one named 2D float32 layer on the target grid, row-major with
// latitude as the slow axis.
type Field struct {
	Name   string
	Values []float32
}

// Bytes serialises the field tightly packed, little-endian float32.
func (f *Field) Bytes() []byte {
	return f32leBytes(f.Values)
}

// IngestSource loads one source container and regrids its schema variables
// onto the target grid. Only the first time slice is used. A missing
// variable, or a source whose axes cannot be read, is an ErrIngest; callers
// skip the source and continue the build.
func IngestSource(path string, kind SourceKind, grid Grid) ([]Field, error) {
	src, err := ReadGridSource(path)
	if err != nil {
		return nil, errors.Join(ErrIngest, err)
	}

	schema, ok := kindSchemas[kind]
	if !ok {
		return nil, errors.Join(ErrIngest, fmt.Errorf("unknown source kind %d", int(kind)))
	}

	fields := make([]Field, 0, len(schema))
	for _, mapping := range schema {
		plane, ok := src.Slice(mapping.raw, 0)
		if !ok {
			return nil, errors.Join(ErrIngest, fmt.Errorf("%s source missing variable %q", kind, mapping.raw))
		}
		fields = append(fields, Field{
			Name:   mapping.field,
			Values: Bilinear(plane, src.Lats, src.Lons, grid),
		})
	}

	return fields, nil
}
