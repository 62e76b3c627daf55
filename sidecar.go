package seapack

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// MaskSidecar is the standalone land-mask artifact produced by the
// rasteriser tool; grid bounds and steps followed by the dense mask bytes.
// The on-disk layout is little-endian: six float64
// (lat0, lat1, lon0, lon1, dlat, dlon), two uint32 (rows, cols), then
// rows*cols mask bytes.
type MaskSidecar struct {
	Lat0 float64
	Lat1 float64
	Lon0 float64
	Lon1 float64
	Dlat float64
	Dlon float64
	Rows uint32
	Cols uint32
	Mask []uint8
}

// NewMaskSidecar wraps a rasterised mask with its grid for serialisation.
func NewMaskSidecar(grid Grid, mask []uint8) MaskSidecar {
	return MaskSidecar{
		Lat0: grid.Lat0,
		Lat1: grid.Lat1,
		Lon0: grid.Lon0,
		Lon1: grid.Lon1,
		Dlat: grid.D,
		Dlon: grid.D,
		Rows: uint32(grid.Rows()),
		Cols: uint32(grid.Cols()),
		Mask: mask,
	}
}

// WriteMaskSidecar serialises the sidecar.
func WriteMaskSidecar(path string, sc *MaskSidecar) error {
	if len(sc.Mask) != int(sc.Rows)*int(sc.Cols) {
		return errors.Join(ErrWrite, fmt.Errorf("mask has %d cells, header says %dx%d", len(sc.Mask), sc.Rows, sc.Cols))
	}

	stream, err := os.Create(path)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}
	defer stream.Close()

	w := bufio.NewWriter(stream)

	header := []float64{sc.Lat0, sc.Lat1, sc.Lon0, sc.Lon1, sc.Dlat, sc.Dlon}
	err = binary.Write(w, binary.LittleEndian, header)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}
	err = binary.Write(w, binary.LittleEndian, []uint32{sc.Rows, sc.Cols})
	if err != nil {
		return errors.Join(ErrWrite, err)
	}
	_, err = w.Write(sc.Mask)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	err = w.Flush()
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}

// ReadMaskSidecar parses a sidecar file back.
func ReadMaskSidecar(path string) (*MaskSidecar, error) {
	stream, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSidecar, err)
	}
	defer stream.Close()

	reader := bufio.NewReader(stream)

	var sc MaskSidecar
	header := make([]float64, 6)
	err = binary.Read(reader, binary.LittleEndian, &header)
	if err != nil {
		return nil, errors.Join(ErrInvalidSidecar, err)
	}
	sc.Lat0, sc.Lat1, sc.Lon0, sc.Lon1, sc.Dlat, sc.Dlon = header[0], header[1], header[2], header[3], header[4], header[5]

	dims := make([]uint32, 2)
	err = binary.Read(reader, binary.LittleEndian, &dims)
	if err != nil {
		return nil, errors.Join(ErrInvalidSidecar, err)
	}
	sc.Rows, sc.Cols = dims[0], dims[1]

	sc.Mask = make([]uint8, int(sc.Rows)*int(sc.Cols))
	err = binary.Read(reader, binary.LittleEndian, &sc.Mask)
	if err != nil {
		return nil, errors.Join(ErrInvalidSidecar, err)
	}

	return &sc, nil
}
