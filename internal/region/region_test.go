package region

import (
	"bytes"
	"math/rand"
	"testing"
)

func fakeChunkNBT(marker byte, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = marker
	}
	return buf
}

// Property 6: header is 8192 bytes, sector ranges lie within file size,
// no two chunks overlap, empty slots have 0 entries.
func TestAssembleRegionLayout(t *testing.T) {
	chunks := []Chunk{
		{LocalX: 0, LocalZ: 0, NBT: fakeChunkNBT(1, 100)},
		{LocalX: 5, LocalZ: 5, NBT: fakeChunkNBT(2, 9000)},
		{LocalX: 31, LocalZ: 31, NBT: fakeChunkNBT(3, 42)},
	}
	buf, err := assemble(chunks)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if len(buf) < HeaderSectors*SectorSize {
		t.Fatalf("file too short for header")
	}

	type span struct{ start, end int }
	var spans []span
	for x := 0; x < ChunksPerAxis; x++ {
		for z := 0; z < ChunksPerAxis; z++ {
			present := (x == 0 && z == 0) || (x == 5 && z == 5) || (x == 31 && z == 31)
			if present != r.Exists(x, z) {
				t.Fatalf("presence mismatch at (%d,%d): want %v", x, z, present)
			}
			if !present {
				continue
			}
			start, count, _ := r.SectorRange(x, z)
			if start < HeaderSectors {
				t.Fatalf("chunk (%d,%d) overlaps header: start=%d", x, z, start)
			}
			end := (start + count) * SectorSize
			if end > len(buf) {
				t.Fatalf("chunk (%d,%d) sector range exceeds file size", x, z)
			}
			spans = append(spans, span{start * SectorSize, end})
		}
	}

	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			a, b := spans[i], spans[j]
			if a.start < b.end && b.start < a.end {
				t.Fatalf("overlapping sector ranges: %v and %v", a, b)
			}
		}
	}
}

func TestReadBackMatchesWritten(t *testing.T) {
	want := fakeChunkNBT(7, 5000)
	chunks := []Chunk{{LocalX: 3, LocalZ: 4, NBT: want}}
	buf, err := assemble(chunks)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadChunk(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round-tripped chunk payload mismatch")
	}
}

func TestOversizedChunkIsHardError(t *testing.T) {
	huge := fakeChunkNBT(9, 255*SectorSize+1)
	// incompressible data: pseudo-random bytes so zlib can't shrink it
	// below the sector-overflow threshold.
	rand.New(rand.NewSource(1)).Read(huge)
	_, err := assemble([]Chunk{{LocalX: 0, LocalZ: 0, NBT: huge}})
	if err == nil {
		t.Fatal("expected a hard error for an oversized chunk")
	}
}

func TestTimestampsAreZero(t *testing.T) {
	buf, err := assemble([]Chunk{{LocalX: 0, LocalZ: 0, NBT: fakeChunkNBT(1, 10)}})
	if err != nil {
		t.Fatal(err)
	}
	tsSector := buf[SectorSize : 2*SectorSize]
	for _, b := range tsSector {
		if b != 0 {
			t.Fatalf("expected zeroed timestamp table, found non-zero byte")
		}
	}
}

// Property 2 support: assembling the same chunk set twice is byte-identical.
func TestAssembleDeterministic(t *testing.T) {
	chunks := []Chunk{
		{LocalX: 1, LocalZ: 2, NBT: fakeChunkNBT(5, 3000)},
		{LocalX: 2, LocalZ: 1, NBT: fakeChunkNBT(6, 1500)},
	}
	a, err := assemble(chunks)
	if err != nil {
		t.Fatal(err)
	}
	b, err := assemble(chunks)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("assemble is not deterministic")
	}
}
