package seapack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shpPolygonContent encodes the little-endian content section of a polygon
// record from a set of rings.
func shpPolygonContent(t *testing.T, rings ...[]Point) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, shpShapePolygon))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, [4]float64{}))

	total := 0
	offsets := make([]int32, 0, len(rings))
	for _, ring := range rings {
		offsets = append(offsets, int32(total))
		total += len(ring)
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(len(rings))))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int32(total)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, offsets))
	for _, ring := range rings {
		for _, p := range ring {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, [2]float64{p.X, p.Y}))
		}
	}

	return buf.Bytes()
}

// shpBytes assembles a shapefile stream; a 100 byte header with the given
// file code, then one record per content blob.
func shpBytes(t *testing.T, file_code int32, contents ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	header := make([]byte, shpHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(file_code))
	buf.Write(header)

	for i, content := range contents {
		require.Zero(t, len(content)%2, "content must align to 16 bit words")
		require.NoError(t, binary.Write(&buf, binary.BigEndian, int32(i+1)))
		require.NoError(t, binary.Write(&buf, binary.BigEndian, int32(len(content)/2)))
		buf.Write(content)
	}

	return buf.Bytes()
}

func TestDecodeShapefilePolygonWithHole(t *testing.T) {
	content := shpPolygonContent(t,
		closedSquare(0, 0, 10, 10),
		reversed(closedSquare(3, 3, 7, 7)),
	)
	polys, err := DecodeShapefile(bytes.NewReader(shpBytes(t, shpFileCode, content)))
	require.NoError(t, err)
	require.Len(t, polys, 1)
	require.Len(t, polys[0].Holes, 1)

	assert.True(t, polys[0].Contains(1, 1))
	assert.False(t, polys[0].Contains(5, 5))
}

func TestDecodeShapefileMultipleRecords(t *testing.T) {
	rec_a := shpPolygonContent(t, closedSquare(0, 0, 10, 10))
	rec_b := shpPolygonContent(t, closedSquare(20, 20, 30, 30))
	polys, err := DecodeShapefile(bytes.NewReader(shpBytes(t, shpFileCode, rec_a, rec_b)))
	require.NoError(t, err)
	assert.Len(t, polys, 2)
}

func TestDecodeShapefileSkipsNullShapes(t *testing.T) {
	var null_rec bytes.Buffer
	require.NoError(t, binary.Write(&null_rec, binary.LittleEndian, shpShapeNull))

	poly_rec := shpPolygonContent(t, closedSquare(0, 0, 10, 10))
	polys, err := DecodeShapefile(bytes.NewReader(shpBytes(t, shpFileCode, null_rec.Bytes(), poly_rec)))
	require.NoError(t, err)
	assert.Len(t, polys, 1)
}

func TestDecodeShapefileDropsDegenerateRings(t *testing.T) {
	triangle := []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	content := shpPolygonContent(t, triangle, closedSquare(0, 0, 10, 10))
	polys, err := DecodeShapefile(bytes.NewReader(shpBytes(t, shpFileCode, content)))
	require.NoError(t, err)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].Outer.Points, 5)
}

func TestDecodeShapefileBadFileCode(t *testing.T) {
	_, err := DecodeShapefile(bytes.NewReader(shpBytes(t, 1234)))
	assert.ErrorIs(t, err, ErrInvalidShapefile)
}

func TestDecodeShapefileShortHeader(t *testing.T) {
	_, err := DecodeShapefile(bytes.NewReader(make([]byte, 40)))
	assert.ErrorIs(t, err, ErrInvalidShapefile)
}

func TestDecodeShapefileUnsupportedShape(t *testing.T) {
	var content bytes.Buffer
	require.NoError(t, binary.Write(&content, binary.LittleEndian, int32(3))) // polyline
	require.NoError(t, binary.Write(&content, binary.LittleEndian, int32(0)))

	_, err := DecodeShapefile(bytes.NewReader(shpBytes(t, shpFileCode, content.Bytes())))
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestDecodeShapefileTruncatedRecord(t *testing.T) {
	content := shpPolygonContent(t, closedSquare(0, 0, 10, 10))
	stream := shpBytes(t, shpFileCode, content)

	_, err := DecodeShapefile(bytes.NewReader(stream[:len(stream)-8]))
	assert.ErrorIs(t, err, ErrCorruptRecord)
}
