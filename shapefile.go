package seapack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ESRI shapefile constants. Only the subset required for coastline polygon
// data is handled; 2D polygons without Z or M values.
const (
	shpFileCode     = int32(9994)
	shpHeaderSize   = 100
	shpShapeNull    = int32(0)
	shpShapePolygon = int32(5)
)

// shpRecordHdr is the big-endian header preceding every shapefile record.
// Content_length counts 16-bit words, so the byte size of the record content
// is twice that.
type shpRecordHdr struct {
	Record_number  int32
	Content_length int32
}

// shpPolygonHdr is the little-endian fixed portion of a polygon record
// content section, directly after the shape type.
type shpPolygonHdr struct {
	Bbox       [4]float64
	Num_parts  int32
	Num_points int32
}

// ReadShapefilePolygons opens a shapefile and decodes every polygon record.
func ReadShapefilePolygons(path string) ([]Polygon, error) {
	stream, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidShapefile, err)
	}
	defer stream.Close()

	return DecodeShapefile(stream)
}

// DecodeShapefile parses a shapefile byte stream into polygons.
// The 100 byte header is validated against the magic file code, then records
// are walked until EOF. Null shapes are skipped; any shape other than polygon
// is rejected.
func DecodeShapefile(stream io.Reader) ([]Polygon, error) {
	header := make([]byte, shpHeaderSize)
	_, err := io.ReadFull(stream, header)
	if err != nil {
		return nil, errors.Join(ErrInvalidShapefile, err)
	}

	file_code := int32(binary.BigEndian.Uint32(header[0:4]))
	if file_code != shpFileCode {
		return nil, errors.Join(ErrInvalidShapefile, fmt.Errorf("file code %d", file_code))
	}

	polys := make([]Polygon, 0)

	for {
		var rec_hdr shpRecordHdr
		err = binary.Read(stream, binary.BigEndian, &rec_hdr)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Join(ErrCorruptRecord, err)
		}

		content := make([]byte, int(rec_hdr.Content_length)*2)
		_, err = io.ReadFull(stream, content)
		if err != nil {
			return nil, errors.Join(ErrCorruptRecord, fmt.Errorf("record %d: %w", rec_hdr.Record_number, err))
		}

		reader := bytes.NewReader(content)

		var shape_type int32
		err = binary.Read(reader, binary.LittleEndian, &shape_type)
		if err != nil {
			return nil, errors.Join(ErrCorruptRecord, fmt.Errorf("record %d: %w", rec_hdr.Record_number, err))
		}

		switch shape_type {
		case shpShapeNull:
			continue
		case shpShapePolygon:
			rings, err := decodePolygonContent(reader)
			if err != nil {
				return nil, errors.Join(ErrCorruptRecord, fmt.Errorf("record %d: %w", rec_hdr.Record_number, err))
			}
			polys = append(polys, AssemblePolygons(rings)...)
		default:
			return nil, errors.Join(ErrUnsupportedShape, fmt.Errorf("shape type %d", shape_type))
		}
	}

	return polys, nil
}

// decodePolygonContent reads the little-endian polygon layout; bbox, part
// offsets and the flat coordinate list, then splits the coordinates at the
// part offsets. Rings with fewer than 4 points are degenerate and dropped.
func decodePolygonContent(reader *bytes.Reader) ([]Ring, error) {
	var hdr shpPolygonHdr
	err := binary.Read(reader, binary.LittleEndian, &hdr)
	if err != nil {
		return nil, err
	}
	if hdr.Num_parts < 0 || hdr.Num_points < 0 {
		return nil, fmt.Errorf("negative counts; parts %d points %d", hdr.Num_parts, hdr.Num_points)
	}

	parts := make([]int32, hdr.Num_parts)
	err = binary.Read(reader, binary.LittleEndian, &parts)
	if err != nil {
		return nil, err
	}

	coords := make([]float64, 2*hdr.Num_points)
	err = binary.Read(reader, binary.LittleEndian, &coords)
	if err != nil {
		return nil, err
	}

	points := make([]Point, hdr.Num_points)
	for i := range points {
		points[i] = Point{X: coords[2*i], Y: coords[2*i+1]}
	}

	rings := make([]Ring, 0, hdr.Num_parts)
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || end > int32(len(points)) || start > end {
			return nil, fmt.Errorf("part offsets %d..%d outside %d points", start, end, len(points))
		}
		if end-start < 4 {
			continue
		}
		rings = append(rings, NewRing(points[start:end]))
	}

	return rings, nil
}
