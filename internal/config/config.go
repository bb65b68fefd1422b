// Package config loads and validates francegen's terrain configuration
// (spec.md §3 "StyleProfile (from config)" and §4.5's OSM/WMTS overlay
// settings), grounded on original_source/src/config.rs's TerrainConfig
// loader, and on hellsoul86-voxelcraft.ai's use of
// santhosh-tekuri/jsonschema for schema-level validation ahead of
// semantic checks.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/francegen/francegen/internal/block"
	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/style"
)

// OsmGeometry distinguishes line (buffered polyline) layers from
// polygon (scanline-filled) layers (spec.md §4.5).
type OsmGeometry int

const (
	GeometryPolygon OsmGeometry = iota
	GeometryLine
)

// OverlayStyle is the config-level style patch an OSM layer or WMTS
// color rule contributes; it is turned into a style.StylePatch once a
// feature/pixel hit is known and a ColumnMask can be computed.
type OverlayStyle struct {
	Biome           *block.Biome
	SurfaceBlock    *block.ID
	SubsurfaceBlock *block.ID
	TopThickness    *uint8
	Extrusion       *ExtrusionStyle
}

// ExtrusionStyle carries a dynamic extrusion height source plus the
// block to extrude with (spec.md §4.5 polygon path).
type ExtrusionStyle struct {
	Height AttributeSource
	Block  *block.ID
}

// OsmLayer is one configured Overpass query plus its rasterization
// style (spec.md §4.5 OSM path).
type OsmLayer struct {
	Name           string
	Geometry       OsmGeometry
	Query          string
	Width          AttributeSource
	Style          OverlayStyle
	LayerIndex     int32
	InsertionOrder uint32
}

// OsmConfig is the resolved OSM overlay configuration.
type OsmConfig struct {
	Enabled     bool
	OverpassURL string
	BboxMarginM float64
	Layers      []OsmLayer
}

// WmtsColorRule is one configured pixel-color match plus its style
// (spec.md §4.5 WMTS path).
type WmtsColorRule struct {
	R, G, B, A     uint8
	Tolerance      uint8
	AlphaThreshold uint8
	Style          OverlayStyle
	LayerIndex     int32
	InsertionOrder uint32
}

// Matches reports whether an RGBA pixel satisfies this rule's
// per-channel tolerance and alpha threshold (spec.md §4.5).
func (r WmtsColorRule) Matches(pr, pg, pb, pa uint8) bool {
	if pa < r.AlphaThreshold {
		return false
	}
	return absDiffU8(pr, r.R) <= r.Tolerance &&
		absDiffU8(pg, r.G) <= r.Tolerance &&
		absDiffU8(pb, r.B) <= r.Tolerance
}

func absDiffU8(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// WmtsConfig is the resolved WMTS overlay configuration.
type WmtsConfig struct {
	Enabled         bool
	CapabilitiesURL string
	Layer           string
	StyleID         string
	TileMatrixSet   string
	TileMatrix      string
	Format          string
	BboxMarginM     float64
	MaxTiles        uint32
	Colors          []WmtsColorRule
}

// DefaultDataVersion is the Minecraft 1.21.10 data version written when
// a terrain config leaves data_version unset (spec.md §9 Open Question:
// "documented, not hard-coded, as a config field").
const DefaultDataVersion int32 = 3955

// Config is the fully resolved, validated terrain configuration.
type Config struct {
	Style       *style.StyleProfile
	Osm         *OsmConfig
	Wmts        *WmtsConfig
	DataVersion int32
}

// Load reads, schema-validates, and semantically parses a terrain
// config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferr.New(ferr.IO, path, err)
	}
	return Parse(data)
}

// Parse validates raw JSON bytes against the embedded schema, then
// converts them into a Config.
func Parse(data []byte) (*Config, error) {
	if err := Validate(data); err != nil {
		return nil, ferr.New(ferr.Config, "", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ferr.New(ferr.Config, "", err)
	}

	cfg, err := fromFile(f)
	if err != nil {
		return nil, ferr.New(ferr.Config, "", err)
	}
	return cfg, nil
}

func fromFile(f file) (*Config, error) {
	topThickness := uint8(1)
	if f.TopLayerThickness != nil {
		if *f.TopLayerThickness == 0 {
			return nil, fmt.Errorf("top_layer_thickness must be greater than 0")
		}
		topThickness = uint8(*f.TopLayerThickness)
	}

	cliffs, err := parseCliffGeneration(f.CliffGeneration)
	if err != nil {
		return nil, err
	}

	biomeLayers := make([]style.BiomeLayer, 0, len(f.BiomeLayers))
	for i, bl := range f.BiomeLayers {
		layer, err := parseBiomeLayer(bl, cliffs)
		if err != nil {
			return nil, fmt.Errorf("biome_layers[%d]: %w", i, err)
		}
		biomeLayers = append(biomeLayers, layer)
	}

	topBlockLayers := make([]style.TopBlockLayer, 0, len(f.TopBlockLayers))
	for i, tl := range f.TopBlockLayers {
		layer, err := parseTopBlockLayer(tl)
		if err != nil {
			return nil, fmt.Errorf("top_block_layers[%d]: %w", i, err)
		}
		topBlockLayers = append(topBlockLayers, layer)
	}

	profile := &style.StyleProfile{
		TopLayerBlock:     block.ID(strOr(f.TopLayerBlock, "minecraft:grass_block")),
		TopLayerThickness: topThickness,
		BottomLayerBlock:  block.ID(strOr(f.BottomLayerBlock, "minecraft:stone")),
		BaseBiome:         block.Biome(strOr(f.BaseBiome, "minecraft:plains")),
		BiomeLayers:       biomeLayers,
		TopBlockLayers:    topBlockLayers,
		CliffEnabled:      f.CliffGeneration.Enabled,
		CliffGeneration:   cliffs,
		GenerateFeatures:  boolOr(f.GenerateFeatures, false),
		EmptyChunkRadius:  u32Or(f.EmptyChunkRadius, 32),
	}

	var osmCfg *OsmConfig
	if f.Osm != nil {
		osmCfg, err = parseOsmConfig(*f.Osm)
		if err != nil {
			return nil, fmt.Errorf("osm: %w", err)
		}
	}

	var wmtsCfg *WmtsConfig
	if f.Wmts != nil {
		wmtsCfg, err = parseWmtsConfig(*f.Wmts)
		if err != nil {
			return nil, fmt.Errorf("wmts: %w", err)
		}
	}

	dataVersion := DefaultDataVersion
	if f.DataVersion != nil {
		dataVersion = *f.DataVersion
	}

	return &Config{Style: profile, Osm: osmCfg, Wmts: wmtsCfg, DataVersion: dataVersion}, nil
}

func strOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func u32Or(p *uint32, def uint32) uint32 {
	if p == nil {
		return def
	}
	return *p
}

func f64Or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
