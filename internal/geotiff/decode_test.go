package geotiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// buildMinimalTiff assembles a tiny classic little-endian TIFF with a
// single strip of float32 samples and a ModelPixelScale/ModelTiepoint
// georeferencing pair, matching what a real single-band DEM export
// carries. Layout: header, image data, IFD, then any overflow tag data.
func buildMinimalTiff(t *testing.T, width, height int, samples []float32, compress bool) []byte {
	t.Helper()
	order := binary.LittleEndian

	var pixels bytes.Buffer
	for _, s := range samples {
		var buf [4]byte
		order.PutUint32(buf[:], math.Float32bits(s))
		pixels.Write(buf[:])
	}
	pixelData := pixels.Bytes()
	if compress {
		var compressed bytes.Buffer
		w := zlib.NewWriter(&compressed)
		if _, err := w.Write(pixelData); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		pixelData = compressed.Bytes()
	}

	const headerSize = 8
	pixelDataOffset := uint32(headerSize)
	afterPixels := pixelDataOffset + uint32(len(pixelData))

	// Overflow areas for tag values that don't fit inline (4 bytes),
	// placed right after the pixel data.
	overflowOffset := afterPixels
	var overflow bytes.Buffer
	putFloat64s := func(vals ...float64) uint32 {
		off := overflowOffset + uint32(overflow.Len())
		for _, v := range vals {
			var buf [8]byte
			order.PutUint64(buf[:], math.Float64bits(v))
			overflow.Write(buf[:])
		}
		return off
	}
	scaleOffset := putFloat64s(1.0, 1.0, 0.0)
	tiepointOffset := putFloat64s(0, 0, 0, 500000, 6600000, 0)

	type entry struct {
		tag, typ uint16
		count    uint32
		value    uint32 // inline value or offset, written as 4 bytes LE
	}
	entries := []entry{
		{tagImageWidth, 3, 1, uint32(width)},
		{tagImageLength, 3, 1, uint32(height)},
		{tagBitsPerSample, 3, 1, 32},
		{tagCompression, 3, 1, boolToCompression(compress)},
		{tagStripOffsets, 4, 1, pixelDataOffset},
		{tagSamplesPerPixel, 3, 1, 1},
		{tagRowsPerStrip, 3, 1, uint32(height)},
		{tagStripByteCounts, 4, 1, uint32(len(pixelData))},
		{tagModelPixelScale, 12, 3, scaleOffset},
		{tagModelTiepoint, 12, 6, tiepointOffset},
		{tagSampleFormat, 3, 1, sampleFormatFloat},
	}

	var ifd bytes.Buffer
	binary.Write(&ifd, order, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&ifd, order, e.tag)
		binary.Write(&ifd, order, e.typ)
		binary.Write(&ifd, order, e.count)
		var valBuf [4]byte
		order.PutUint32(valBuf[:], e.value)
		ifd.Write(valBuf[:])
	}
	binary.Write(&ifd, order, uint32(0)) // next IFD offset

	ifdOffset := overflowOffset + uint32(overflow.Len())

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, order, uint16(42))
	binary.Write(&out, order, ifdOffset)
	out.Write(pixelData)
	out.Write(overflow.Bytes())
	out.Write(ifd.Bytes())
	return out.Bytes()
}

func boolToCompression(compress bool) uint32 {
	if compress {
		return compressionDeflate
	}
	return compressionNone
}

func TestDecodeUncompressedFloat32Tiff(t *testing.T) {
	samples := []float32{10, 20, 30, 40}
	data := buildMinimalTiff(t, 2, 2, samples, false)

	tile, err := decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if tile.Width != 2 || tile.Height != 2 {
		t.Fatalf("unexpected dimensions: %dx%d", tile.Width, tile.Height)
	}
	for i, want := range samples {
		if tile.Samples[i] != want {
			t.Fatalf("sample %d: got %v want %v", i, tile.Samples[i], want)
		}
	}
	if tile.Transform.OriginX != 500000 || tile.Transform.OriginY != 6600000 {
		t.Fatalf("unexpected origin: %v", tile.Transform)
	}
	if tile.Transform.PixelWidth != 1.0 || tile.Transform.PixelHeight != -1.0 {
		t.Fatalf("unexpected pixel size: %v", tile.Transform)
	}
}

func TestDecodeDeflateCompressedTiff(t *testing.T) {
	samples := []float32{1, 2, 3, 4, 5, 6}
	data := buildMinimalTiff(t, 3, 2, samples, true)

	tile, err := decode(data)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range samples {
		if tile.Samples[i] != want {
			t.Fatalf("sample %d: got %v want %v", i, tile.Samples[i], want)
		}
	}
}

func TestLoadReadsFileFromDisk(t *testing.T) {
	data := buildMinimalTiff(t, 1, 1, []float32{42}, false)
	dir := t.TempDir()
	path := filepath.Join(dir, "dem.tif")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	tile, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if tile.Sample(0, 0) != 42 {
		t.Fatalf("unexpected sample: %v", tile.Sample(0, 0))
	}
}

func TestExtentReadsHeaderWithoutDecodingSamples(t *testing.T) {
	data := buildMinimalTiff(t, 4, 3, make([]float32, 12), false)
	dir := t.TempDir()
	path := filepath.Join(dir, "dem.tif")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	transform, width, height, err := Extent(path)
	if err != nil {
		t.Fatal(err)
	}
	if width != 4 || height != 3 {
		t.Fatalf("unexpected dimensions: %dx%d", width, height)
	}
	if transform.OriginX != 500000 || transform.OriginY != 6600000 {
		t.Fatalf("unexpected origin: %v", transform)
	}
}

func TestDecodeRejectsBigTiffMagic(t *testing.T) {
	data := []byte("II")
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], 43)
	data = append(data, buf[:]...)
	data = append(data, 0, 0, 0, 0)
	if _, err := decode(data); err == nil {
		t.Fatal("expected an error for non-classic TIFF magic")
	}
}
