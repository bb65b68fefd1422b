// GeoTIFF decoding is one of spec.md §1's declared "external
// collaborators" (a tile reader yielding a float32 grid plus an affine
// transform) rather than core pipeline logic. No repo in the example
// corpus touches TIFF at all, and none imports a TIFF or GDAL binding,
// so this decoder is a from-scratch reader over the standard library
// (encoding/binary, compress/zlib), scoped to the common
// single-band DEM case: classic (non-BigTIFF) byte order, strip-based
// storage, uncompressed or Deflate-compressed data, and a
// ModelPixelScale+ModelTiepoint georeferencing pair. Documented in
// DESIGN.md as the pipeline's other standard-library-only component,
// alongside the Lambert93 projection math.
package geotiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/francegen/francegen/internal/ferr"
)

const (
	tagImageWidth        = 256
	tagImageLength       = 257
	tagBitsPerSample     = 258
	tagCompression       = 259
	tagStripOffsets      = 273
	tagSamplesPerPixel   = 277
	tagRowsPerStrip      = 278
	tagStripByteCounts   = 279
	tagPredictor         = 317
	tagModelPixelScale   = 33550
	tagModelTiepoint     = 33922
	tagModelTransform    = 34264
	tagSampleFormat      = 339
	tagGdalNoData        = 42113

	compressionNone    = 1
	compressionDeflate = 8
	compressionAdobe   = 32946

	predictorHorizontal = 2

	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
)

type ifdEntry struct {
	tag      uint16
	typ      uint16
	count    uint32
	valueRaw [4]byte
}

// Load reads a GeoTIFF file into a Tile.
func Load(path string) (Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tile{}, ferr.New(ferr.TileDecode, path, err)
	}
	tile, err := decode(data)
	if err != nil {
		return Tile{}, ferr.New(ferr.TileDecode, path, err)
	}
	return tile, nil
}

// Extent reads only a GeoTIFF's header (dimensions and georeferencing),
// skipping strip decompression — enough for the CLI's bounds command
// to report each tile's model-space extent without decoding every
// sample (mirrors original_source/src/bounds.rs's GeoRaster::open/
// extent, which also avoids a full pixel-grid decode).
func Extent(path string) (transform AffineTransform, width, height int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AffineTransform{}, 0, 0, ferr.New(ferr.TileDecode, path, err)
	}
	order, values, err := parseHeader(data)
	if err != nil {
		return AffineTransform{}, 0, 0, ferr.New(ferr.TileDecode, path, err)
	}
	w, err := entryUint(data, order, values, tagImageWidth)
	if err != nil {
		return AffineTransform{}, 0, 0, ferr.New(ferr.TileDecode, path, err)
	}
	h, err := entryUint(data, order, values, tagImageLength)
	if err != nil {
		return AffineTransform{}, 0, 0, ferr.New(ferr.TileDecode, path, err)
	}
	transform, err = readTransform(data, order, values)
	if err != nil {
		return AffineTransform{}, 0, 0, ferr.New(ferr.TileDecode, path, err)
	}
	return transform, int(w), int(h), nil
}

func parseHeader(data []byte) (binary.ByteOrder, map[uint16]ifdEntry, error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("file too small to be a TIFF")
	}
	var order binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, nil, fmt.Errorf("not a TIFF (bad byte-order marker)")
	}
	magic := order.Uint16(data[2:4])
	if magic != 42 {
		return nil, nil, fmt.Errorf("not a classic TIFF (magic=%d); BigTIFF is unsupported", magic)
	}
	ifdOffset := order.Uint32(data[4:8])

	entries, err := readIFD(data, order, ifdOffset)
	if err != nil {
		return nil, nil, err
	}
	values := make(map[uint16]ifdEntry, len(entries))
	for _, e := range entries {
		values[e.tag] = e
	}
	return order, values, nil
}

func decode(data []byte) (Tile, error) {
	order, values, err := parseHeader(data)
	if err != nil {
		return Tile{}, err
	}

	width, err := entryUint(data, order, values, tagImageWidth)
	if err != nil {
		return Tile{}, err
	}
	height, err := entryUint(data, order, values, tagImageLength)
	if err != nil {
		return Tile{}, err
	}
	bitsPerSample, err := entryUint(data, order, values, tagBitsPerSample)
	if err != nil {
		return Tile{}, err
	}
	sampleFormat := uint32(sampleFormatUint)
	if e, ok := values[tagSampleFormat]; ok {
		sampleFormat, _ = entryUintValue(data, order, e)
	}
	compression := uint32(compressionNone)
	if e, ok := values[tagCompression]; ok {
		compression, _ = entryUintValue(data, order, e)
	}
	predictor := uint32(1)
	if e, ok := values[tagPredictor]; ok {
		predictor, _ = entryUintValue(data, order, e)
	}
	samplesPerPixel := uint32(1)
	if e, ok := values[tagSamplesPerPixel]; ok {
		samplesPerPixel, _ = entryUintValue(data, order, e)
	}
	rowsPerStrip := height
	if e, ok := values[tagRowsPerStrip]; ok {
		rowsPerStrip, _ = entryUintValue(data, order, e)
	}

	stripOffsets, err := entryUintSlice(data, order, values, tagStripOffsets)
	if err != nil {
		return Tile{}, err
	}
	stripByteCounts, err := entryUintSlice(data, order, values, tagStripByteCounts)
	if err != nil {
		return Tile{}, err
	}

	transform, err := readTransform(data, order, values)
	if err != nil {
		return Tile{}, err
	}

	samples, err := readSamples(data, stripOffsets, stripByteCounts, int(width), int(height),
		int(rowsPerStrip), int(samplesPerPixel), int(bitsPerSample), sampleFormat, compression, predictor)
	if err != nil {
		return Tile{}, err
	}

	var noData *float32
	if e, ok := values[tagGdalNoData]; ok {
		raw, err := entryASCII(data, order, e)
		if err == nil {
			if v, err := strconv.ParseFloat(strings.TrimRight(raw, "\x00 \t\r\n"), 64); err == nil {
				f := float32(v)
				noData = &f
			}
		}
	}

	return Tile{
		Transform: transform,
		Width:     int(width),
		Height:    int(height),
		Samples:   samples,
		NoData:    noData,
	}, nil
}

func readIFD(data []byte, order binary.ByteOrder, offset uint32) ([]ifdEntry, error) {
	if int(offset)+2 > len(data) {
		return nil, fmt.Errorf("IFD offset out of range")
	}
	count := order.Uint16(data[offset : offset+2])
	entries := make([]ifdEntry, 0, count)
	pos := offset + 2
	for i := uint16(0); i < count; i++ {
		if int(pos)+12 > len(data) {
			return nil, fmt.Errorf("truncated IFD entry")
		}
		var e ifdEntry
		e.tag = order.Uint16(data[pos : pos+2])
		e.typ = order.Uint16(data[pos+2 : pos+4])
		e.count = order.Uint32(data[pos+4 : pos+8])
		copy(e.valueRaw[:], data[pos+8:pos+12])
		entries = append(entries, e)
		pos += 12
	}
	return entries, nil
}

func typeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 1
	}
}

func entryDataOffset(order binary.ByteOrder, e ifdEntry) (offset uint32, inline bool) {
	total := typeSize(e.typ) * int(e.count)
	if total <= 4 {
		return 0, true
	}
	return order.Uint32(e.valueRaw[:]), false
}

func entryUintValue(data []byte, order binary.ByteOrder, e ifdEntry) (uint32, error) {
	vals, err := entryUintSliceFromEntry(data, order, e)
	if err != nil || len(vals) == 0 {
		return 0, err
	}
	return vals[0], nil
}

func entryUint(data []byte, order binary.ByteOrder, values map[uint16]ifdEntry, tag uint16) (uint32, error) {
	e, ok := values[tag]
	if !ok {
		return 0, fmt.Errorf("missing required TIFF tag %d", tag)
	}
	return entryUintValue(data, order, e)
}

func entryUintSlice(data []byte, order binary.ByteOrder, values map[uint16]ifdEntry, tag uint16) ([]uint32, error) {
	e, ok := values[tag]
	if !ok {
		return nil, fmt.Errorf("missing required TIFF tag %d", tag)
	}
	return entryUintSliceFromEntry(data, order, e)
}

func entryUintSliceFromEntry(data []byte, order binary.ByteOrder, e ifdEntry) ([]uint32, error) {
	offset, inline := entryDataOffset(order, e)
	size := typeSize(e.typ)
	var src []byte
	if inline {
		src = e.valueRaw[:]
	} else {
		if int(offset)+size*int(e.count) > len(data) {
			return nil, fmt.Errorf("TIFF entry data out of range")
		}
		src = data[offset : int(offset)+size*int(e.count)]
	}
	out := make([]uint32, e.count)
	for i := 0; i < int(e.count); i++ {
		chunk := src[i*size : i*size+size]
		switch size {
		case 1:
			out[i] = uint32(chunk[0])
		case 2:
			out[i] = uint32(order.Uint16(chunk))
		case 4:
			out[i] = order.Uint32(chunk)
		default:
			return nil, fmt.Errorf("unsupported TIFF field width %d", size)
		}
	}
	return out, nil
}

func entryFloat64Slice(data []byte, order binary.ByteOrder, e ifdEntry) ([]float64, error) {
	offset, inline := entryDataOffset(order, e)
	size := typeSize(e.typ)
	var src []byte
	if inline {
		src = e.valueRaw[:]
	} else {
		if int(offset)+size*int(e.count) > len(data) {
			return nil, fmt.Errorf("TIFF entry data out of range")
		}
		src = data[offset : int(offset)+size*int(e.count)]
	}
	out := make([]float64, e.count)
	for i := 0; i < int(e.count); i++ {
		chunk := src[i*size : i*size+size]
		switch e.typ {
		case 11: // FLOAT
			out[i] = float64(math.Float32frombits(order.Uint32(chunk)))
		case 12: // DOUBLE
			out[i] = math.Float64frombits(order.Uint64(chunk))
		default:
			return nil, fmt.Errorf("unsupported TIFF field type %d for float data", e.typ)
		}
	}
	return out, nil
}

func entryASCII(data []byte, order binary.ByteOrder, e ifdEntry) (string, error) {
	offset, inline := entryDataOffset(order, e)
	if inline {
		return string(bytes.TrimRight(e.valueRaw[:e.count], "\x00")), nil
	}
	if int(offset)+int(e.count) > len(data) {
		return "", fmt.Errorf("TIFF ASCII entry out of range")
	}
	return string(bytes.TrimRight(data[offset:int(offset)+int(e.count)], "\x00")), nil
}

// readTransform builds the affine transform from ModelTransformationTag
// if present, else from the common ModelPixelScale+ModelTiepoint pair
// (tiepoint anchored at raster (0,0), north-up raster).
func readTransform(data []byte, order binary.ByteOrder, values map[uint16]ifdEntry) (AffineTransform, error) {
	if e, ok := values[tagModelTransform]; ok {
		m, err := entryFloat64Slice(data, order, e)
		if err != nil || len(m) < 16 {
			return AffineTransform{}, fmt.Errorf("invalid ModelTransformationTag")
		}
		return AffineTransform{
			OriginX: m[3], PixelWidth: m[0], RowRotation: m[1],
			OriginY: m[7], ColRotation: m[4], PixelHeight: m[5],
		}, nil
	}

	scaleEntry, ok := values[tagModelPixelScale]
	if !ok {
		return AffineTransform{}, fmt.Errorf("missing georeferencing (ModelPixelScaleTag/ModelTransformationTag)")
	}
	tiepointEntry, ok := values[tagModelTiepoint]
	if !ok {
		return AffineTransform{}, fmt.Errorf("missing ModelTiepointTag")
	}
	scale, err := entryFloat64Slice(data, order, scaleEntry)
	if err != nil || len(scale) < 2 {
		return AffineTransform{}, fmt.Errorf("invalid ModelPixelScaleTag")
	}
	tiepoint, err := entryFloat64Slice(data, order, tiepointEntry)
	if err != nil || len(tiepoint) < 6 {
		return AffineTransform{}, fmt.Errorf("invalid ModelTiepointTag")
	}
	// tiepoint = [rasterX, rasterY, rasterZ, modelX, modelY, modelZ]
	rasterX, rasterY := tiepoint[0], tiepoint[1]
	modelX, modelY := tiepoint[3], tiepoint[4]
	originX := modelX - rasterX*scale[0]
	originY := modelY + rasterY*scale[1]
	return AffineTransform{
		OriginX: originX, PixelWidth: scale[0], RowRotation: 0,
		OriginY: originY, ColRotation: 0, PixelHeight: -scale[1],
	}, nil
}

func readSamples(data []byte, stripOffsets, stripByteCounts []uint32, width, height, rowsPerStrip, samplesPerPixel, bitsPerSample int, sampleFormat, compression, predictor uint32) ([]float32, error) {
	if samplesPerPixel != 1 {
		return nil, fmt.Errorf("only single-band GeoTIFFs are supported (got %d samples per pixel)", samplesPerPixel)
	}
	if compression != compressionNone && compression != compressionDeflate && compression != compressionAdobe {
		return nil, fmt.Errorf("unsupported TIFF compression %d (only none and Deflate are supported)", compression)
	}
	bytesPerSample := bitsPerSample / 8
	if bytesPerSample*8 != bitsPerSample {
		return nil, fmt.Errorf("unsupported BitsPerSample %d", bitsPerSample)
	}

	out := make([]float32, width*height)
	row := 0
	for stripIdx, offset := range stripOffsets {
		if stripIdx >= len(stripByteCounts) {
			return nil, fmt.Errorf("mismatched strip offset/byte-count arrays")
		}
		byteCount := stripByteCounts[stripIdx]
		if int(offset)+int(byteCount) > len(data) {
			return nil, fmt.Errorf("strip %d out of range", stripIdx)
		}
		raw := data[offset : int(offset)+int(byteCount)]
		if compression == compressionDeflate || compression == compressionAdobe {
			decompressed, err := inflate(raw)
			if err != nil {
				return nil, fmt.Errorf("strip %d: %w", stripIdx, err)
			}
			raw = decompressed
		}

		rowsInStrip := rowsPerStrip
		if row+rowsInStrip > height {
			rowsInStrip = height - row
		}
		stride := width * bytesPerSample
		if predictor == predictorHorizontal {
			undoHorizontalPredictor(raw, width, rowsInStrip, bytesPerSample)
		}
		for r := 0; r < rowsInStrip; r++ {
			base := r * stride
			if base+stride > len(raw) {
				return nil, fmt.Errorf("strip %d: truncated row data", stripIdx)
			}
			for c := 0; c < width; c++ {
				chunk := raw[base+c*bytesPerSample : base+(c+1)*bytesPerSample]
				v, err := decodeSample(chunk, bitsPerSample, sampleFormat)
				if err != nil {
					return nil, err
				}
				out[(row+r)*width+c] = v
			}
		}
		row += rowsInStrip
	}
	if row != height {
		return nil, fmt.Errorf("decoded %d rows, expected %d", row, height)
	}
	return out, nil
}

func decodeSample(chunk []byte, bitsPerSample int, sampleFormat uint32) (float32, error) {
	switch {
	case sampleFormat == sampleFormatFloat && bitsPerSample == 32:
		return math.Float32frombits(binary.LittleEndian.Uint32(chunk)), nil
	case sampleFormat == sampleFormatFloat && bitsPerSample == 64:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(chunk))), nil
	case sampleFormat == sampleFormatInt && bitsPerSample == 16:
		return float32(int16(binary.LittleEndian.Uint16(chunk))), nil
	case sampleFormat == sampleFormatInt && bitsPerSample == 32:
		return float32(int32(binary.LittleEndian.Uint32(chunk))), nil
	case sampleFormat == sampleFormatUint && bitsPerSample == 16:
		return float32(binary.LittleEndian.Uint16(chunk)), nil
	case sampleFormat == sampleFormatUint && bitsPerSample == 32:
		return float32(binary.LittleEndian.Uint32(chunk)), nil
	default:
		return 0, fmt.Errorf("unsupported sample format %d / bits %d", sampleFormat, bitsPerSample)
	}
}

func undoHorizontalPredictor(raw []byte, width, rows, bytesPerSample int) {
	if bytesPerSample != 2 && bytesPerSample != 4 {
		return
	}
	stride := width * bytesPerSample
	for r := 0; r < rows; r++ {
		base := r * stride
		if base+stride > len(raw) {
			return
		}
		for c := 1; c < width; c++ {
			prev := raw[base+(c-1)*bytesPerSample : base+c*bytesPerSample]
			cur := raw[base+c*bytesPerSample : base+(c+1)*bytesPerSample]
			if bytesPerSample == 2 {
				p := binary.LittleEndian.Uint16(prev)
				v := binary.LittleEndian.Uint16(cur)
				binary.LittleEndian.PutUint16(cur, p+v)
			} else {
				p := binary.LittleEndian.Uint32(prev)
				v := binary.LittleEndian.Uint32(cur)
				binary.LittleEndian.PutUint32(cur, p+v)
			}
		}
	}
}

func inflate(raw []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
