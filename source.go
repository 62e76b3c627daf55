package seapack

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// gridSourceMagic identifies a gridded source container file.
var gridSourceMagic = [4]byte{'S', 'S', 'G', '1'}

// GridSource is the adapter contract between the pack builder and upstream
// forecast decoding. An upstream converter (GRIB/NetCDF readers live there)
// emits one GridSource per model cycle: labelled latitude/longitude axes, a
// time axis and named float32 variables laid out time-slow, latitude-slow.
// Axes are ascending.
type GridSource struct {
	Lats  []float64
	Lons  []float64
	Times []time.Time
	Vars  map[string][]float32
	order []string
}

// VarNames lists the variable names in the order they were added or decoded.
func (s *GridSource) VarNames() []string {
	return s.order
}

// AddVar appends a named variable; values must hold
// len(Times)*len(Lats)*len(Lons) samples.
func (s *GridSource) AddVar(name string, values []float32) error {
	want := len(s.Times) * len(s.Lats) * len(s.Lons)
	if len(values) != want {
		return errors.Join(ErrInvalidSource, fmt.Errorf("variable %s has %d samples, want %d", name, len(values), want))
	}
	if s.Vars == nil {
		s.Vars = make(map[string][]float32)
	}
	if _, dup := s.Vars[name]; !dup {
		s.order = append(s.order, name)
	}
	s.Vars[name] = values

	return nil
}

// Slice returns the 2D lat/lon plane of a variable at time index t.
func (s *GridSource) Slice(name string, t int) ([]float32, bool) {
	values, ok := s.Vars[name]
	if !ok {
		return nil, false
	}
	plane := len(s.Lats) * len(s.Lons)
	if t < 0 || (t+1)*plane > len(values) {
		return nil, false
	}

	return values[t*plane : (t+1)*plane], true
}

// WriteGridSource serialises a GridSource to its little-endian container
// form; magic, axis/time/variable counts, axes, unix times, then each
// variable as a length prefixed name and its float32 samples.
func WriteGridSource(path string, src *GridSource) error {
	stream, err := os.Create(path)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}
	defer stream.Close()

	w := bufio.NewWriter(stream)

	err = binary.Write(w, binary.LittleEndian, gridSourceMagic)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	counts := []uint32{
		uint32(len(src.Lats)),
		uint32(len(src.Lons)),
		uint32(len(src.Times)),
		uint32(len(src.order)),
	}
	err = binary.Write(w, binary.LittleEndian, counts)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	err = binary.Write(w, binary.LittleEndian, src.Lats)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}
	err = binary.Write(w, binary.LittleEndian, src.Lons)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	stamps := make([]int64, len(src.Times))
	for i, t := range src.Times {
		stamps[i] = t.UTC().Unix()
	}
	err = binary.Write(w, binary.LittleEndian, stamps)
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	for _, name := range src.order {
		err = binary.Write(w, binary.LittleEndian, uint16(len(name)))
		if err != nil {
			return errors.Join(ErrWrite, err)
		}
		_, err = w.WriteString(name)
		if err != nil {
			return errors.Join(ErrWrite, err)
		}
		err = binary.Write(w, binary.LittleEndian, src.Vars[name])
		if err != nil {
			return errors.Join(ErrWrite, err)
		}
	}

	err = w.Flush()
	if err != nil {
		return errors.Join(ErrWrite, err)
	}

	return nil
}

// ReadGridSource parses a gridded source container file.
func ReadGridSource(path string) (*GridSource, error) {
	stream, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	defer stream.Close()

	return DecodeGridSource(bufio.NewReader(stream))
}

// DecodeGridSource parses a gridded source byte stream.
func DecodeGridSource(stream io.Reader) (*GridSource, error) {
	var magic [4]byte
	err := binary.Read(stream, binary.LittleEndian, &magic)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	if magic != gridSourceMagic {
		return nil, errors.Join(ErrInvalidSource, fmt.Errorf("magic %q", magic[:]))
	}

	var counts [4]uint32
	err = binary.Read(stream, binary.LittleEndian, &counts)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	nlat, nlon, ntime, nvar := counts[0], counts[1], counts[2], counts[3]
	if nlat == 0 || nlon == 0 || ntime == 0 {
		return nil, errors.Join(ErrInvalidSource, fmt.Errorf("empty axes %dx%dx%d", ntime, nlat, nlon))
	}

	src := &GridSource{
		Lats:  make([]float64, nlat),
		Lons:  make([]float64, nlon),
		Times: make([]time.Time, ntime),
		Vars:  make(map[string][]float32, nvar),
	}

	err = binary.Read(stream, binary.LittleEndian, &src.Lats)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	err = binary.Read(stream, binary.LittleEndian, &src.Lons)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}

	stamps := make([]int64, ntime)
	err = binary.Read(stream, binary.LittleEndian, &stamps)
	if err != nil {
		return nil, errors.Join(ErrInvalidSource, err)
	}
	for i, s := range stamps {
		src.Times[i] = time.Unix(s, 0).UTC()
	}

	plane := int(ntime) * int(nlat) * int(nlon)
	for v := uint32(0); v < nvar; v++ {
		var name_len uint16
		err = binary.Read(stream, binary.LittleEndian, &name_len)
		if err != nil {
			return nil, errors.Join(ErrInvalidSource, err)
		}
		name_buf := make([]byte, name_len)
		_, err = io.ReadFull(stream, name_buf)
		if err != nil {
			return nil, errors.Join(ErrInvalidSource, err)
		}

		values := make([]float32, plane)
		err = binary.Read(stream, binary.LittleEndian, &values)
		if err != nil {
			return nil, errors.Join(ErrInvalidSource, err)
		}

		name := string(name_buf)
		src.Vars[name] = values
		src.order = append(src.order, name)
	}

	return src, nil
}
