// Package overlay holds the immutable, chunk-indexed collection of
// style.PaintDirective values produced by the OSM and WMTS overlay
// sources (spec.md §4.5/§9 "Overlay ownership": overlays are
// materialized into an immutable index built once, then only read).
// Grounded on the sharded chunk map
// original_source/src/osm.rs and src/wmts.rs paint directly into
// (HashMap<(i32,i32), ChunkHeights>); here the map value is a plain
// directive slice consumed later by style.Resolve.
package overlay

import "github.com/francegen/francegen/internal/style"

// ChunkKey identifies a chunk by its chunk-grid coordinates.
type ChunkKey struct {
	X, Z int32
}

// Index maps a chunk coordinate to the directives painted onto it by
// overlay sources. Built once via Builder, then only read; generation
// reads it from a single sequential chunk loop, not from parallel
// workers.
type Index struct {
	byChunk map[ChunkKey][]style.PaintDirective
}

// DirectivesFor returns the directives touching the given chunk, or nil
// if no overlay source painted onto it.
func (idx *Index) DirectivesFor(chunkX, chunkZ int32) []style.PaintDirective {
	if idx == nil {
		return nil
	}
	return idx.byChunk[ChunkKey{X: chunkX, Z: chunkZ}]
}

// Empty reports whether the index has no directives at all, letting
// callers skip overlay bookkeeping entirely when neither OSM nor WMTS
// is enabled.
func (idx *Index) Empty() bool {
	return idx == nil || len(idx.byChunk) == 0
}

// Builder accumulates directives from OSM and WMTS sources before being
// frozen into a read-only Index.
type Builder struct {
	byChunk map[ChunkKey][]style.PaintDirective
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byChunk: make(map[ChunkKey][]style.PaintDirective)}
}

// Add appends a directive to the given chunk's directive list.
func (b *Builder) Add(chunkX, chunkZ int32, d style.PaintDirective) {
	key := ChunkKey{X: chunkX, Z: chunkZ}
	b.byChunk[key] = append(b.byChunk[key], d)
}

// Build freezes the accumulated directives into a read-only Index.
func (b *Builder) Build() *Index {
	return &Index{byChunk: b.byChunk}
}
