package chunk

// bitsForValueCount returns the number of bits needed to address `count`
// distinct values (ceil(log2(count))), with 1 bit as the floor for a
// range of size <= 1 so an all-zero packed array is still well formed.
func bitsForValueCount(count int) int {
	if count <= 1 {
		return 1
	}
	bits := 0
	for v := count - 1; v > 0; v >>= 1 {
		bits++
	}
	return bits
}

// packIndices bit-packs `indices` at `bitsPerEntry` bits each into 64-bit
// big-endian-ordered longs, per Anvil 1.21's non-straddling layout: index
// i lives entirely within long i/floor(64/bitsPerEntry) — it is never
// split across a long boundary, so values-per-long is floor(64/bits) and
// any leftover bits in a long are zero-padded, never carried into the
// next long. This mirrors original_source/src/chunk.rs's pack_unsigned /
// pack_palette_indices exactly, generalized into one function for both
// block and biome packing.
func packIndices(indices []int, bitsPerEntry int) []int64 {
	if bitsPerEntry <= 0 || bitsPerEntry > 64 {
		panic("chunk: bitsPerEntry out of range")
	}
	valuesPerLong := 64 / bitsPerEntry
	longCount := (len(indices) + valuesPerLong - 1) / valuesPerLong
	longs := make([]int64, longCount)

	var mask uint64
	if bitsPerEntry == 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(bitsPerEntry)) - 1
	}

	for i, v := range indices {
		longIdx := i / valuesPerLong
		offset := uint((i % valuesPerLong) * bitsPerEntry)
		longs[longIdx] |= int64((uint64(v) & mask) << offset)
	}
	return longs
}

// LongIndexFor returns which packed long holds index i at bitsPerEntry,
// the invariant called out in spec.md's design notes:
// i / floor(64/bitsPerEntry). This equals floor(i*bpe/64) only when
// bitsPerEntry divides 64.
func LongIndexFor(i, bitsPerEntry int) int {
	valuesPerLong := 64 / bitsPerEntry
	return i / valuesPerLong
}
