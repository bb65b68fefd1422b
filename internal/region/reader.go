package region

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

var (
	ErrNoChunk            = errors.New("region: chunk not present")
	ErrInvalidChunkLength = errors.New("region: invalid chunk length")
	ErrInvalidCompression = errors.New("region: invalid compression type")
)

// Reader parses a region file image already held in memory, used by
// tests to verify the invariants Write promises (spec.md §8 property 6).
// Mirrors astei-anvil2slime/anvil_read.go's AnvilReader, adapted to read
// from a byte slice instead of an io.ReadSeeker.
type Reader struct {
	data      []byte
	locations []uint32
}

func NewReader(data []byte) (*Reader, error) {
	if len(data) < HeaderSectors*SectorSize {
		return nil, errors.New("region: file shorter than header")
	}
	locations := make([]uint32, MaxOffsets)
	if err := binary.Read(bytes.NewReader(data[:SectorSize]), binary.BigEndian, locations); err != nil {
		return nil, err
	}
	return &Reader{data: data, locations: locations}, nil
}

func (r *Reader) Exists(localX, localZ int) bool {
	return r.locations[localX+localZ*ChunksPerAxis] != 0
}

// SectorRange returns the (startSector, sectorCount) for a present chunk.
func (r *Reader) SectorRange(localX, localZ int) (start, count int, ok bool) {
	word := r.locations[localX+localZ*ChunksPerAxis]
	if word == 0 {
		return 0, 0, false
	}
	return int(word >> 8), int(word & 0xff), true
}

func (r *Reader) ReadChunk(localX, localZ int) ([]byte, error) {
	start, count, ok := r.SectorRange(localX, localZ)
	if !ok {
		return nil, ErrNoChunk
	}
	offset := start * SectorSize
	end := offset + count*SectorSize
	if end > len(r.data) {
		return nil, ErrInvalidChunkLength
	}
	sector := r.data[offset:end]

	if len(sector) < 5 {
		return nil, ErrInvalidChunkLength
	}
	length := binary.BigEndian.Uint32(sector[:4])
	compression := sector[4]
	if int(length) > len(sector)-4 {
		return nil, ErrInvalidChunkLength
	}
	payload := sector[5 : 4+length]

	switch compression {
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, ErrInvalidCompression
	}
}
