// Package chunk builds a single 16x16x384(extended) Minecraft chunk from
// resolved per-column styles, encoding the Anvil 1.21 section/palette/
// bit-packed-data layout described in spec.md §4.6 and grounded on
// original_source/src/chunk.rs's section/palette builders, re-expressed
// over this module's own internal/nbt encoder.
package chunk

import (
	"github.com/francegen/francegen/internal/block"
	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/nbt"
)

const (
	sectionSide            = coords.SectionSide
	blocksPerSection       = sectionSide * sectionSide * sectionSide
	biomeSide              = sectionSide / 4
	biomeEntriesPerSection = biomeSide * biomeSide * biomeSide
	biomeScale             = sectionSide / biomeSide
	minBlockBitsPerEntry   = 4
	minBiomeBitsPerEntry   = 1
	// yPos is pinned to -4 regardless of the chunk's actual lowest
	// populated section: spec.md's chunk NBT layout fixes this field at
	// -4 even though this world's extended Y range means the lowest
	// populated section index is -128, not -4 (see DESIGN.md).
	fixedYPos int32 = -4
)

// ColumnInput is the resolved per-column data the style/cliff stages hand
// to the chunk builder. HasElevation=false marks a no-data (NaN) column:
// a full-air column using the default biome (spec.md §4.6 step 1).
type ColumnInput struct {
	HasElevation    bool
	SurfaceY        int
	Biome           block.Biome
	TopBlock        block.ID
	TopThickness    uint8
	SubsurfaceBlock block.ID
	Extrusion       *block.Extrusion
}

// Options configures chunk-wide NBT fields not derived from column data.
type Options struct {
	DataVersion      int32
	GenerateFeatures bool
	DefaultBiome     block.Biome
}

// Build assembles the NBT compound for chunk (cx, cz) given its 256
// resolved columns (index = localZ*16 + localX). Returns false if every
// section would be empty (air-only with no entities/biome content worth
// writing) — callers may still choose to write an empty-chunk placeholder
// for §4.7's empty_chunk_radius padding.
func Build(cx, cz int, columns [256]ColumnInput, opts Options) (*nbt.Compound, bool) {
	sections, anyBlocks := buildSections(columns)

	root := nbt.NewCompound().
		Put("DataVersion", opts.DataVersion).
		Put("xPos", int32(cx)).
		Put("zPos", int32(cz)).
		Put("yPos", fixedYPos).
		Put("Status", statusFor(opts.GenerateFeatures)).
		Put("isLightOn", int8(0)).
		Put("block_entities", nbt.List{ElemTag: nbt.TagCompound}).
		Put("fluid_ticks", nbt.List{ElemTag: nbt.TagCompound}).
		Put("block_ticks", nbt.List{ElemTag: nbt.TagCompound}).
		Put("PostProcessing", buildPostProcessing()).
		Put("structures", buildStructures()).
		Put("sections", sectionsToList(sections)).
		Put("Heightmaps", buildHeightmaps(columns))

	return root, anyBlocks
}

func statusFor(generateFeatures bool) string {
	if generateFeatures {
		return "minecraft:liquid_carvers"
	}
	return "minecraft:full"
}

func buildPostProcessing() nbt.List {
	items := make([]interface{}, coords.SectionSide) // one empty short-list per legacy section slot
	for i := range items {
		items[i] = nbt.List{ElemTag: nbt.TagEnd}
	}
	return nbt.List{ElemTag: nbt.TagList, Items: items}
}

func buildStructures() *nbt.Compound {
	return nbt.NewCompound().
		Put("References", nbt.NewCompound()).
		Put("Starts", nbt.NewCompound())
}

type builtSection struct {
	y        int32
	compound *nbt.Compound
}

func sectionsToList(sections []builtSection) nbt.List {
	items := make([]interface{}, len(sections))
	for i, s := range sections {
		items[i] = s.compound
	}
	return nbt.List{ElemTag: nbt.TagCompound, Items: items}
}

func buildSections(columns [256]ColumnInput) ([]builtSection, bool) {
	minSectionY := coords.FloorDiv(coords.MinWorldY, sectionSide)
	maxHeight := coords.MinWorldY
	for _, c := range columns {
		top := c.SurfaceY
		if c.Extrusion != nil {
			top += int(c.Extrusion.HeightBlocks)
		}
		if c.HasElevation && top > maxHeight {
			maxHeight = top
		}
	}
	maxSectionY := coords.FloorDiv(maxHeight, sectionSide)
	if maxSectionY < minSectionY {
		maxSectionY = minSectionY
	}

	var sections []builtSection
	anyBlocks := false
	for sy := minSectionY; sy <= maxSectionY; sy++ {
		section, hasBlocks := buildSection(sy, columns)
		if section != nil {
			sections = append(sections, builtSection{y: int32(sy), compound: section})
			if hasBlocks {
				anyBlocks = true
			}
		}
	}
	return sections, anyBlocks
}

func buildSection(sectionY int, columns [256]ColumnInput) (*nbt.Compound, bool) {
	blockPalette := newPalette[block.ID](block.Air)
	biomePalette := newPalette[block.Biome]()
	blockIndices := make([]int, blocksPerSection)
	biomeIndices := make([]int, biomeEntriesPerSection)
	hasNonAir := false

	for lz := 0; lz < sectionSide; lz++ {
		for lx := 0; lx < sectionSide; lx++ {
			col := columns[lz*sectionSide+lx]
			biomeIdx := biomePalette.index(col.Biome)
			for ly := 0; ly < sectionSide; ly++ {
				worldY := sectionY*sectionSide + ly
				b := blockAt(worldY, col)
				if b != block.Air {
					hasNonAir = true
				}
				idx := ly*sectionSide*sectionSide + lz*sectionSide + lx
				blockIndices[idx] = blockPalette.index(b)

				if ly%biomeScale == 0 {
					bx, by, bz := lx/biomeScale, ly/biomeScale, lz/biomeScale
					biomeIndices[by*biomeSide*biomeSide+bz*biomeSide+bx] = biomeIdx
				}
			}
		}
	}

	if !hasNonAir {
		return nil, false
	}

	blockStates := nbt.NewCompound().Put("palette", paletteToList(blockPalette))
	if data := packPaletteIndices(blockIndices, blockPalette.len(), minBlockBitsPerEntry); data != nil {
		blockStates.Put("data", nbt.LongArray(data))
	}

	biomes := nbt.NewCompound().Put("palette", biomePaletteToList(biomePalette))
	if data := packPaletteIndices(biomeIndices, biomePalette.len(), minBiomeBitsPerEntry); data != nil {
		biomes.Put("data", nbt.LongArray(data))
	}

	section := nbt.NewCompound().
		Put("Y", int8(sectionY)).
		Put("block_states", blockStates).
		Put("biomes", biomes)
	return section, true
}

// blockAt resolves the block for one Y level of one column, per spec.md
// §4.6 step 2: subsurface below the top layer (subsurface_block already
// defaults to bottom_layer_block when no layer/overlay overrides it),
// top_block for the thickness band ending at the surface, extrusion
// block above it up to extrusion height, air otherwise.
func blockAt(worldY int, col ColumnInput) block.ID {
	if !col.HasElevation {
		return block.Air
	}
	if worldY > col.SurfaceY {
		if col.Extrusion != nil && worldY <= col.SurfaceY+int(col.Extrusion.HeightBlocks) {
			return col.Extrusion.Block
		}
		return block.Air
	}
	depth := col.SurfaceY - worldY
	if depth < int(col.TopThickness) {
		return col.TopBlock
	}
	return col.SubsurfaceBlock
}

func paletteToList(p *palette[block.ID]) nbt.List {
	items := make([]interface{}, p.len())
	for i, id := range p.entries {
		items[i] = nbt.NewCompound().Put("Name", string(id))
	}
	return nbt.List{ElemTag: nbt.TagCompound, Items: items}
}

func biomePaletteToList(p *palette[block.Biome]) nbt.List {
	items := make([]interface{}, p.len())
	for i, id := range p.entries {
		items[i] = string(id)
	}
	return nbt.List{ElemTag: nbt.TagString, Items: items}
}

// packPaletteIndices packs `indices` (values in [0,paletteLen)) at
// max(minBits, bitsForValueCount(paletteLen)) bits per entry, returning
// nil when the palette holds a single value (no data array is written in
// that case, per spec.md §4.6's invariant list).
func packPaletteIndices(indices []int, paletteLen, minBits int) []int64 {
	if paletteLen <= 1 {
		return nil
	}
	bits := bitsForValueCount(paletteLen)
	if bits < minBits {
		bits = minBits
	}
	return packIndices(indices, bits)
}

func buildHeightmaps(columns [256]ColumnInput) *nbt.Compound {
	values := make([]int, 256)
	maxRelative := coords.MaxWorldY - coords.MinWorldY + 2
	for i, c := range columns {
		top := coords.MinWorldY
		if c.HasElevation {
			top = c.SurfaceY
			if c.Extrusion != nil {
				top += int(c.Extrusion.HeightBlocks)
			}
		}
		values[i] = top - coords.MinWorldY + 1
	}
	bits := bitsForValueCount(maxRelative)
	packed := nbt.LongArray(packUnsignedValues(values, bits))
	return nbt.NewCompound().
		Put("MOTION_BLOCKING", packed).
		Put("WORLD_SURFACE", packed)
}

func packUnsignedValues(values []int, bits int) []int64 {
	return packIndices(values, bits)
}
