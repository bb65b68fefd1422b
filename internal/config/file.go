package config

import (
	"encoding/json"
	"fmt"
)

// file is the raw JSON shape of a terrain config document, decoded
// before semantic validation and conversion to the in-memory Config
// (grounded on original_source/src/config.rs's *File structs, ported
// from serde to encoding/json).
type file struct {
	BottomLayerBlock  *string          `json:"bottom_layer_block"`
	TopLayerBlock     *string          `json:"top_layer_block"`
	TopLayerThickness *uint32          `json:"top_layer_thickness"`
	BaseBiome         *string          `json:"base_biome"`
	BiomeLayers       []biomeLayerFile `json:"biome_layers"`
	TopBlockLayers    []topBlockLayerFile `json:"top_block_layers"`
	CliffGeneration   cliffGenerationFile `json:"cliff_generation"`
	Osm               *osmConfigFile      `json:"osm"`
	Wmts              *wmtsConfigFile     `json:"wmts"`
	GenerateFeatures  *bool               `json:"generate_features"`
	EmptyChunkRadius  *uint32             `json:"empty_chunk_radius"`
	DataVersion       *int32              `json:"data_version"`
}

type rangeFile struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

type biomeLayerFile struct {
	Range                    rangeFile `json:"range"`
	Biome                    string    `json:"biome"`
	CliffAngleThresholdDeg   *float64  `json:"cliff_angle_threshold_degrees"`
	CliffBlock               *string   `json:"cliff_block"`
	CliffSmoothingRadius      *uint32   `json:"cliff_smoothing_radius"`
	CliffSmoothingFactor      *float64  `json:"cliff_smoothing_factor"`
}

type topBlockLayerFile struct {
	Range rangeFile `json:"range"`
	Block string    `json:"block"`
}

type cliffGenerationFile struct {
	Enabled               bool    `json:"enabled"`
	AngleThresholdDegrees *float64 `json:"angle_threshold_degrees"`
	Block                 *string  `json:"block"`
	SmoothingRadius       *uint32  `json:"smoothing_radius"`
	SmoothingFactor       *float64 `json:"smoothing_factor"`
}

// attributeSourceFile decodes either a bare number ("width_m": 3) or an
// object ({"default":3,"min":1,"max":5,"sources":[...]}) (spec.md §3
// AttributeSource, an untagged union in the original source).
type attributeSourceFile struct {
	fixed   *float64
	object  *attributeSourceObjectFile
}

type attributeSourceObjectFile struct {
	Default    *float64               `json:"default"`
	Min        *float64               `json:"min"`
	Max        *float64               `json:"max"`
	Sources    []attributeKeySourceFile `json:"sources"`
	Key        *string                `json:"key"`
	Multiplier *float64               `json:"multiplier"`
}

type attributeKeySourceFile struct {
	Key        string  `json:"key"`
	Multiplier *float64 `json:"multiplier"`
}

func (a *attributeSourceFile) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		a.fixed = &num
		return nil
	}
	var obj attributeSourceObjectFile
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("attribute source must be a number or an object: %w", err)
	}
	a.object = &obj
	return nil
}

type overlayStyleFile struct {
	Biome           *string              `json:"biome"`
	SurfaceBlock    *string              `json:"surface_block"`
	SubsurfaceBlock *string              `json:"subsurface_block"`
	TopThickness    *uint32              `json:"top_thickness"`
	Extrusion       *extrusionStyleFile  `json:"extrusion"`
}

type extrusionStyleFile struct {
	HeightM attributeSourceFile `json:"height_m"`
	Block   *string             `json:"block"`
}

type osmConfigFile struct {
	Enabled      *bool           `json:"enabled"`
	OverpassURL  *string         `json:"overpass_url"`
	BboxMarginM  *float64        `json:"bbox_margin_m"`
	Layers       []osmLayerFile  `json:"layers"`
}

type osmLayerFile struct {
	Name       string              `json:"name"`
	Geometry   *string             `json:"geometry"`
	Query      string              `json:"query"`
	WidthM     attributeSourceFile `json:"width_m"`
	Priority   *uint32             `json:"priority"`
	LayerIndex *int32              `json:"layer_index"`
	Style      overlayStyleFile    `json:"style"`
}

type wmtsConfigFile struct {
	Enabled          bool                  `json:"enabled"`
	CapabilitiesURL  *string               `json:"capabilities_url"`
	Layer            *string               `json:"layer"`
	StyleID          *string               `json:"style_id"`
	TileMatrixSet    *string               `json:"tile_matrix_set"`
	TileMatrix       *string               `json:"tile_matrix"`
	Format           *string               `json:"format"`
	BboxMarginM      *float64              `json:"bbox_margin_m"`
	MaxTiles         *uint32               `json:"max_tiles"`
	Colors           []wmtsColorRuleFile   `json:"colors"`
}

type wmtsColorRuleFile struct {
	Name           *string          `json:"name"`
	Color          string           `json:"color"`
	Tolerance      *uint8           `json:"tolerance"`
	AlphaThreshold *uint8           `json:"alpha_threshold"`
	Priority       *uint32          `json:"priority"`
	LayerIndex     *int32           `json:"layer_index"`
	Style          overlayStyleFile `json:"style"`
}
