package seapack

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// PackLayers carries the registered pack layers for export into a dense
// TileDB array. Struct tags declare the TileDB datatype and the compression
// filter pipeline per attribute; the lower-cased field name doubles as the
// attribute name. Layers absent from a pack are filled with NaN (fields) or
// zero (masks) so the dense write always covers the full domain.
type PackLayers struct {
	Wind_u          []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Wind_v          []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Wave_hs         []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Wave_tp         []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Wave_dir        []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Cur_u           []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Cur_v           []float32 `tiledb:"dtype=float32,ftype=attr" filters:"zstd(level=16)"`
	Mask_land       []uint8   `tiledb:"dtype=uint8,ftype=attr" filters:"zstd(level=16)"`
	Mask_shallow    []uint8   `tiledb:"dtype=uint8,ftype=attr" filters:"zstd(level=16)"`
	Mask_restricted []uint8   `tiledb:"dtype=uint8,ftype=attr" filters:"zstd(level=16)"`
}

// LoadPackLayers decompresses every part and mask of a pack directory into
// a PackLayers value.
func LoadPackLayers(pack_dir string, manifest *Manifest) (*PackLayers, error) {
	cells := manifest.Grid.Cells()

	fill := make([]float32, cells)
	for i := range fill {
		fill[i] = float32(math.NaN())
	}

	layers := &PackLayers{
		Wind_u:          fill,
		Wind_v:          fill,
		Wave_hs:         fill,
		Wave_tp:         fill,
		Wave_dir:        fill,
		Cur_u:           fill,
		Cur_v:           fill,
		Mask_land:       make([]uint8, cells),
		Mask_shallow:    make([]uint8, cells),
		Mask_restricted: make([]uint8, cells),
	}

	for _, name := range manifest.Fields {
		data, err := os.ReadFile(filepath.Join(pack_dir, name+partExt))
		if err != nil {
			return nil, errors.Join(ErrWritePackTdb, err)
		}
		raw, err := Decompress(data)
		if err != nil {
			return nil, err
		}
		values := f32leValues(raw)
		if len(values) != cells {
			return nil, errors.Join(ErrWritePackTdb, fmt.Errorf("field %s has %d cells, grid wants %d", name, len(values), cells))
		}

		switch name {
		case "wind_u":
			layers.Wind_u = values
		case "wind_v":
			layers.Wind_v = values
		case "wave_hs":
			layers.Wave_hs = values
		case "wave_tp":
			layers.Wave_tp = values
		case "wave_dir":
			layers.Wave_dir = values
		case "cur_u":
			layers.Cur_u = values
		case "cur_v":
			layers.Cur_v = values
		default:
			return nil, errors.Join(ErrWritePackTdb, fmt.Errorf("unregistered field %s", name))
		}
	}

	for kind, filename := range manifest.Masks {
		data, err := os.ReadFile(filepath.Join(pack_dir, filename))
		if err != nil {
			return nil, errors.Join(ErrWritePackTdb, err)
		}
		mask, err := Decompress(data)
		if err != nil {
			return nil, err
		}
		if len(mask) != cells {
			return nil, errors.Join(ErrWritePackTdb, fmt.Errorf("mask %s has %d cells, grid wants %d", kind, len(mask), cells))
		}

		switch kind {
		case MaskLand:
			layers.Mask_land = mask
		case MaskShallow:
			layers.Mask_shallow = mask
		case MaskRestricted:
			layers.Mask_restricted = mask
		}
	}

	return layers, nil
}

// ArrayOpen is a helper func for opening a tiledb array.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}

	err = array.Open(mode)
	if err != nil {
		array.Free()
		return nil, err
	}

	return array, nil
}

// ZstdFilter initialises the Zstandard compression filter and sets the
// compression level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}

	err = filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level)
	if err != nil {
		filt.Free()
		return nil, err
	}

	return filt, nil
}

// createLayerAttr creates one tiledb attribute from the struct tag
// definitions. Supported datatypes are float32 and uint8, the filter
// pipeline is zstd with the tag supplied level.
func createLayerAttr(
	field_name string,
	filter_defs []stgpsr.Definition,
	tiledb_defs map[string]stgpsr.Definition,
	schema *tiledb.ArraySchema,
	ctx *tiledb.Context,
) error {
	var tdb_dtype tiledb.Datatype

	def, status := tiledb_defs["dtype"]
	if !status {
		return errors.Join(ErrCreatePackTdb, errors.New("dtype tag not found"))
	}
	dtype, _ := def.Attribute("dtype")

	switch dtype {
	case "float32":
		tdb_dtype = tiledb.TILEDB_FLOAT32
	case "uint8":
		tdb_dtype = tiledb.TILEDB_UINT8
	default:
		return errors.Join(ErrCreatePackTdb, fmt.Errorf("unsupported dtype %v", dtype))
	}

	attr_filts, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer attr_filts.Free()

	for _, filter := range filter_defs {
		switch filter.Name() {
		case "zstd":
			level, status := filter.Attribute("level")
			if !status {
				return errors.Join(ErrCreatePackTdb, errors.New("zstd level not defined"))
			}
			filt, err := ZstdFilter(ctx, int32(level.(int64)))
			if err != nil {
				return errors.Join(ErrCreatePackTdb, err)
			}
			defer filt.Free()
			err = attr_filts.AddFilter(filt)
			if err != nil {
				return errors.Join(ErrCreatePackTdb, err)
			}
		}
	}

	attr, err := tiledb.NewAttribute(ctx, field_name, tdb_dtype)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer attr.Free()

	err = attr.SetFilterList(attr_filts)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	err = schema.AddAttributes(attr)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	return nil
}

// packArraySchema establishes the dense (row, col) array on disk or object
// store, one attribute per registered layer.
func packArraySchema(array_uri string, ctx *tiledb.Context, grid Grid, layers *PackLayers) error {
	rows := uint64(grid.Rows())
	cols := uint64(grid.Cols())

	// tile over blocks of rows; an arbitrary but serviceable choice
	row_tile := uint64(math.Min(float64(256), float64(rows)))

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer domain.Free()

	row_dim, err := tiledb.NewDimension(ctx, "row", tiledb.TILEDB_UINT64, []uint64{0, rows - uint64(1)}, row_tile)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer row_dim.Free()

	col_dim, err := tiledb.NewDimension(ctx, "col", tiledb.TILEDB_UINT64, []uint64{0, cols - uint64(1)}, cols)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer col_dim.Free()

	err = domain.AddDimensions(row_dim, col_dim)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer schema.Free()

	err = schema.SetDomain(domain)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	err = schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	err = schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	// every struct field becomes an attribute, configured by its tags
	values := reflect.ValueOf(layers).Elem()
	types := values.Type()
	filt_defs, _ := stgpsr.ParseStruct(layers, "filters")
	tdb_defs, _ := stgpsr.ParseStruct(layers, "tiledb")

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		field_tdb_defs := make(map[string]stgpsr.Definition)
		for _, v := range tdb_defs[name] {
			field_tdb_defs[v.Name()] = v
		}

		err = createLayerAttr(strings.ToLower(name), filt_defs[name], field_tdb_defs, schema, ctx)
		if err != nil {
			return err
		}
	}

	array, err := tiledb.NewArray(ctx, array_uri)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer array.Free()

	err = array.Create(schema)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}

	return nil
}

// ExportPackToTileDB decompresses a pack and writes every layer into one
// dense (row, col) TileDB array, with the manifest JSON attached as array
// metadata. The optional config_uri carries a TileDB config for object
// store access.
func ExportPackToTileDB(pack_dir, array_uri, config_uri string) error {
	var config *tiledb.Config

	manifest_raw, err := os.ReadFile(filepath.Join(pack_dir, ManifestFilename))
	if err != nil {
		return errors.Join(ErrMissingManifest, err)
	}
	manifest := &Manifest{}
	err = json.Unmarshal(manifest_raw, manifest)
	if err != nil {
		return errors.Join(ErrMissingManifest, err)
	}

	layers, err := LoadPackLayers(pack_dir, manifest)
	if err != nil {
		return err
	}

	// get a generic config if no path provided
	if config_uri == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			return errors.Join(ErrCreatePackTdb, err)
		}
	} else {
		config, err = tiledb.LoadConfig(config_uri)
		if err != nil {
			return errors.Join(ErrCreatePackTdb, err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return errors.Join(ErrCreatePackTdb, err)
	}
	defer ctx.Free()

	err = packArraySchema(array_uri, ctx, manifest.Grid, layers)
	if err != nil {
		return err
	}

	array, err := ArrayOpen(ctx, array_uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	defer array.Free()
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	defer query.Free()

	err = query.SetLayout(tiledb.TILEDB_ROW_MAJOR)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}

	_, err = query.SetDataBuffer("wind_u", layers.Wind_u)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("wind_v", layers.Wind_v)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("wave_hs", layers.Wave_hs)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("wave_tp", layers.Wave_tp)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("wave_dir", layers.Wave_dir)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("cur_u", layers.Cur_u)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("cur_v", layers.Cur_v)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("mask_land", layers.Mask_land)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("mask_shallow", layers.Mask_shallow)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	_, err = query.SetDataBuffer("mask_restricted", layers.Mask_restricted)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}

	subarr, err := array.NewSubarray()
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	defer subarr.Free()

	rows := uint64(manifest.Grid.Rows())
	cols := uint64(manifest.Grid.Cols())
	subarr.AddRangeByName("row", tiledb.MakeRange(uint64(0), rows-uint64(1)))
	subarr.AddRangeByName("col", tiledb.MakeRange(uint64(0), cols-uint64(1)))
	err = query.SetSubarray(subarr)
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}

	err = query.Submit()
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}
	err = query.Finalize()
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}

	err = array.PutMetadata("manifest", string(manifest_raw))
	if err != nil {
		return errors.Join(ErrWritePackTdb, err)
	}

	return nil
}
