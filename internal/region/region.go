// Package region writes Anvil region files: 32x32 chunk containers with a
// sector-indexed header, grounded on astei-anvil2slime/anvil_read.go's
// read-side sector table layout (anvilSectorSize, anvilMaxOffsets, the
// big-endian (offset<<8|count) word format) mirrored for the write path,
// and on slime_writer.go's accumulate-then-flush staging style.
package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/ferr"
)

const (
	SectorSize     = 4096
	ChunksPerAxis  = coords.RegionSide // 32
	MaxOffsets     = ChunksPerAxis * ChunksPerAxis
	HeaderSectors  = 2 // 1 location table sector-equivalent page + 1 timestamp page (each 4096 bytes)
	CompressionZlib byte = 2
	maxSectorCount = 255 // 1-byte sector count in the location word
)

// Chunk is one region slot's payload: uncompressed, big-endian NBT bytes
// for local chunk coordinate (LocalX, LocalZ) in [0,32).
type Chunk struct {
	LocalX, LocalZ int
	NBT            []byte
}

// FileName returns "r.<rx>.<rz>.mca".
func FileName(rx, rz int) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// Write serializes chunks into a fresh region file at dir/r.<rx>.<rz>.mca,
// writing to a ".tmp" sibling first and renaming into place (spec.md
// §4.7 step 4). Timestamps are always zero for reproducibility (spec.md
// §5 "MUST be zero for reproducibility").
func Write(dir string, rx, rz int, chunks []Chunk) error {
	finalPath := filepath.Join(dir, FileName(rx, rz))
	tmpPath := finalPath + ".tmp"

	buf, err := assemble(chunks)
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmpPath, buf, 0o644); err != nil {
		return ferr.New(ferr.IO, finalPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return ferr.New(ferr.IO, finalPath, err)
	}
	return nil
}

// assemble builds the full region file byte image in memory: an 8192-byte
// header (1024 location words + 1024 timestamp words), followed by each
// chunk's sector-aligned compressed payload, in location-table order.
func assemble(chunks []Chunk) ([]byte, error) {
	locations := make([]uint32, MaxOffsets)
	payloads := make([][]byte, MaxOffsets)

	for _, c := range chunks {
		if c.LocalX < 0 || c.LocalX >= ChunksPerAxis || c.LocalZ < 0 || c.LocalZ >= ChunksPerAxis {
			return nil, ferr.New(ferr.RegionWrite, "", fmt.Errorf("chunk local coord (%d,%d) out of [0,32) range", c.LocalX, c.LocalZ))
		}
		compressed, err := compressChunk(c.NBT)
		if err != nil {
			return nil, ferr.New(ferr.RegionWrite, fmt.Sprintf("chunk (%d,%d)", c.LocalX, c.LocalZ), err)
		}
		idx := c.LocalX + c.LocalZ*ChunksPerAxis
		payloads[idx] = compressed
	}

	var body bytes.Buffer
	nextSector := HeaderSectors
	for idx, payload := range payloads {
		if payload == nil {
			continue
		}
		sectorCount := (len(payload) + SectorSize - 1) / SectorSize
		if sectorCount > maxSectorCount {
			lx, lz := idx%ChunksPerAxis, idx/ChunksPerAxis
			return nil, ferr.New(ferr.RegionWrite, fmt.Sprintf("chunk (%d,%d)", lx, lz),
				fmt.Errorf("compressed chunk occupies %d sectors, exceeds the 255-sector Anvil limit", sectorCount))
		}
		locations[idx] = uint32(nextSector<<8) | uint32(sectorCount)

		padded := padToSector(payload)
		body.Write(padded)
		nextSector += sectorCount
	}

	var out bytes.Buffer
	out.Grow(HeaderSectors*SectorSize + body.Len())

	var locHeader bytes.Buffer
	if err := binary.Write(&locHeader, binary.BigEndian, locations); err != nil {
		return nil, err
	}
	out.Write(locHeader.Bytes())

	timestamps := make([]uint32, MaxOffsets) // all zero: reproducibility
	var tsHeader bytes.Buffer
	if err := binary.Write(&tsHeader, binary.BigEndian, timestamps); err != nil {
		return nil, err
	}
	out.Write(tsHeader.Bytes())

	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// compressChunk zlib-compresses uncompressed chunk NBT and prefixes it
// with the Anvil per-chunk header: a big-endian u32 length (payload+1 for
// the compression-type byte) and a compression-type byte (2 = zlib).
func compressChunk(nbtBytes []byte) ([]byte, error) {
	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(nbtBytes); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	length := uint32(compressed.Len() + 1)
	if err := binary.Write(&out, binary.BigEndian, length); err != nil {
		return nil, err
	}
	out.WriteByte(CompressionZlib)
	out.Write(compressed.Bytes())
	return out.Bytes(), nil
}

func padToSector(payload []byte) []byte {
	sectorCount := (len(payload) + SectorSize - 1) / SectorSize
	padded := make([]byte, sectorCount*SectorSize)
	copy(padded, payload)
	return padded
}
