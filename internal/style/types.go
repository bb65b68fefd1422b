// Package style resolves each world column's final block/biome stack
// (spec.md §4.3 style resolver and §4.4 slope/cliff analyzer), combining
// the config-driven StyleProfile defaults, elevation-banded layers,
// cliff detection, and overlay PaintDirectives into one ColumnStyle per
// column. Grounded on original_source/src/config.rs's layer/cliff types
// and original_source/src/world.rs's per-column resolution loop.
package style

import "github.com/francegen/francegen/internal/block"

// ColumnStyle is the fully resolved per-column result the chunk builder
// consumes (spec.md §3). Built fresh per column and discarded after
// encoding.
type ColumnStyle struct {
	Biome           block.Biome
	TopBlock        block.ID
	TopThickness    uint8
	SubsurfaceBlock block.ID
	Extrusion       *block.Extrusion
}

// LayerRange is one entry of biome_layers or top_block_layers: an
// elevation band in metres, inclusive-min / exclusive-max (spec.md §3
// "Layer ranges"). First matching entry wins within its pass.
type LayerRange struct {
	Min, Max float64
}

// Contains reports whether elevationM falls in [Min, Max).
func (r LayerRange) Contains(elevationM float64) bool {
	return elevationM >= r.Min && elevationM < r.Max
}

// BiomeLayer is one biome_layers entry: an elevation band that replaces
// the resolved biome and may override the global cliff settings.
type BiomeLayer struct {
	Range        LayerRange
	Biome        block.Biome
	CliffOverride *CliffSettings // nil: inherit the global settings
}

// TopBlockLayer is one top_block_layers entry: an elevation band that
// replaces the resolved top_block.
type TopBlockLayer struct {
	Range    LayerRange
	TopBlock block.ID
}

// CliffSettings configures the slope/cliff analyzer (spec.md §4.4).
type CliffSettings struct {
	SmoothingRadius      int     // metres, integer, >=1
	SmoothingFactor      float64 // f in [0,1]
	AngleThresholdDegrees float64
	Block                block.ID
}

// StyleProfile is the immutable, config-derived style configuration
// shared read-only across every column resolution in the run (spec.md
// §3 "StyleProfile (from config)").
type StyleProfile struct {
	TopLayerBlock     block.ID
	TopLayerThickness uint8
	BottomLayerBlock  block.ID
	BaseBiome         block.Biome
	CliffEnabled      bool
	CliffGeneration   CliffSettings
	BiomeLayers       []BiomeLayer
	TopBlockLayers    []TopBlockLayer
	GenerateFeatures  bool
	EmptyChunkRadius  uint32
}

// Defaults returns the base ColumnStyle before any layer or overlay is
// applied (style resolver step 1).
func (p *StyleProfile) Defaults() ColumnStyle {
	return ColumnStyle{
		Biome:           p.BaseBiome,
		TopBlock:        p.TopLayerBlock,
		TopThickness:    p.TopLayerThickness,
		SubsurfaceBlock: p.BottomLayerBlock,
	}
}

// CliffSettingsFor resolves the effective cliff settings for elevationM:
// the matching biome layer's override when it has one, otherwise the
// global cliff_generation settings (spec.md §4.4 "Per-biome-layer
// override values ... replace the corresponding global values", mirrors
// original_source/src/config.rs's biome_and_cliff_for_height /
// CliffConfig::resolve). The caller feeds the result into ClassifyCliff
// before the style resolver ever runs.
func (p *StyleProfile) CliffSettingsFor(elevationM float64) CliffSettings {
	for _, layer := range p.BiomeLayers {
		if layer.Range.Contains(elevationM) {
			if layer.CliffOverride != nil {
				return *layer.CliffOverride
			}
			break
		}
	}
	return p.CliffGeneration
}

// OverlayKind distinguishes OSM vector overlays from WMTS raster
// overlays for the Pass C tie-break (OSM precedes WMTS on a
// layer_index tie; spec.md §4.3 step 4 / §5 ordering guarantee).
type OverlayKind int

const (
	OverlayOSM OverlayKind = iota
	OverlayWMTS
)

// StylePatch carries any subset of the fields a PaintDirective may
// override; nil/zero-value pointers mean "not provided" (spec.md §3).
type StylePatch struct {
	SurfaceBlock    *block.ID
	SubsurfaceBlock *block.ID
	TopThickness    *uint8
	Biome           *block.Biome
	Extrusion       *block.Extrusion
}

// ColumnMask marks which of a chunk's 256 columns (index = localZ*16 +
// localX) a PaintDirective applies to.
type ColumnMask [256]bool

// PaintDirective is the common reduction of both overlay kinds (spec.md
// §3). Overlay rasterizers emit one per layer hit; the style resolver
// sorts and applies them in Pass C.
type PaintDirective struct {
	LayerIndex     int32
	InsertionOrder uint32
	Kind           OverlayKind
	Patch          StylePatch
	Mask           ColumnMask
}

// Applies reports whether the directive paints column index idx
// (0..255, index = localZ*16 + localX).
func (d *PaintDirective) Applies(idx int) bool {
	return d.Mask[idx]
}
