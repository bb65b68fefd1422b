package config

import (
	"fmt"

	"github.com/francegen/francegen/internal/block"
	"github.com/francegen/francegen/internal/style"
)

func parseCliffGeneration(f cliffGenerationFile) (style.CliffSettings, error) {
	angle := f64Or(f.AngleThresholdDegrees, 60.0)
	if angle <= 0 {
		return style.CliffSettings{}, fmt.Errorf("cliff_generation.angle_threshold_degrees must be greater than 0")
	}
	blockName := strOr(f.Block, "minecraft:stone")
	if blockName == "" {
		return style.CliffSettings{}, fmt.Errorf("cliff_generation.block must not be empty")
	}
	radius := u32Or(f.SmoothingRadius, 1)
	if radius == 0 {
		return style.CliffSettings{}, fmt.Errorf("cliff_generation.smoothing_radius must be at least 1")
	}
	factor := f64Or(f.SmoothingFactor, 0.0)
	if factor < 0 || factor > 1 {
		return style.CliffSettings{}, fmt.Errorf("cliff_generation.smoothing_factor must be between 0 and 1")
	}
	return style.CliffSettings{
		AngleThresholdDegrees: angle,
		Block:                 block.ID(blockName),
		SmoothingRadius:       int(radius),
		SmoothingFactor:       factor,
	}, nil
}

func parseBiomeLayer(f biomeLayerFile, global style.CliffSettings) (style.BiomeLayer, error) {
	if f.Biome == "" {
		return style.BiomeLayer{}, fmt.Errorf("biome must not be empty")
	}
	min, max, err := parseRange(f.Range.Min, f.Range.Max)
	if err != nil {
		return style.BiomeLayer{}, err
	}

	var override *style.CliffSettings
	if f.CliffAngleThresholdDeg != nil || f.CliffBlock != nil || f.CliffSmoothingRadius != nil || f.CliffSmoothingFactor != nil {
		resolved := global
		if f.CliffAngleThresholdDeg != nil {
			if *f.CliffAngleThresholdDeg <= 0 {
				return style.BiomeLayer{}, fmt.Errorf("cliff_angle_threshold_degrees must be greater than 0")
			}
			resolved.AngleThresholdDegrees = *f.CliffAngleThresholdDeg
		}
		if f.CliffBlock != nil {
			if *f.CliffBlock == "" {
				return style.BiomeLayer{}, fmt.Errorf("cliff_block must not be empty when provided")
			}
			resolved.Block = block.ID(*f.CliffBlock)
		}
		if f.CliffSmoothingRadius != nil {
			if *f.CliffSmoothingRadius == 0 {
				return style.BiomeLayer{}, fmt.Errorf("cliff_smoothing_radius must be at least 1 when provided")
			}
			resolved.SmoothingRadius = int(*f.CliffSmoothingRadius)
		}
		if f.CliffSmoothingFactor != nil {
			if *f.CliffSmoothingFactor < 0 || *f.CliffSmoothingFactor > 1 {
				return style.BiomeLayer{}, fmt.Errorf("cliff_smoothing_factor must be between 0 and 1 when provided")
			}
			resolved.SmoothingFactor = *f.CliffSmoothingFactor
		}
		override = &resolved
	}

	return style.BiomeLayer{
		Range:         style.LayerRange{Min: min, Max: max},
		Biome:         block.Biome(f.Biome),
		CliffOverride: override,
	}, nil
}

func parseTopBlockLayer(f topBlockLayerFile) (style.TopBlockLayer, error) {
	if f.Block == "" {
		return style.TopBlockLayer{}, fmt.Errorf("block must not be empty")
	}
	min, max, err := parseRange(f.Range.Min, f.Range.Max)
	if err != nil {
		return style.TopBlockLayer{}, err
	}
	return style.TopBlockLayer{Range: style.LayerRange{Min: min, Max: max}, TopBlock: block.ID(f.Block)}, nil
}

func parseAttributeSource(f attributeSourceFile, context string, absoluteMin float64) (AttributeSource, error) {
	if f.fixed != nil {
		if *f.fixed < absoluteMin {
			return AttributeSource{}, fmt.Errorf("%s must be at least %g", context, absoluteMin)
		}
		return FixedAttributeSource(*f.fixed), nil
	}
	if f.object == nil {
		return FixedAttributeSource(absoluteMin), nil
	}
	obj := f.object
	if obj.Default == nil {
		return AttributeSource{}, fmt.Errorf("%s.default must be provided when using an object", context)
	}
	if *obj.Default < absoluteMin {
		return AttributeSource{}, fmt.Errorf("%s.default must be at least %g", context, absoluteMin)
	}

	result := AttributeSource{Default: *obj.Default}
	if obj.Min != nil {
		if *obj.Min < absoluteMin {
			return AttributeSource{}, fmt.Errorf("%s.min must be at least %g", context, absoluteMin)
		}
		result.Min = obj.Min
	}
	if obj.Max != nil {
		if *obj.Max < absoluteMin {
			return AttributeSource{}, fmt.Errorf("%s.max must be at least %g", context, absoluteMin)
		}
		result.Max = obj.Max
	}
	if result.Min != nil && result.Max != nil && *result.Min > *result.Max {
		return AttributeSource{}, fmt.Errorf("%s.min must be less than or equal to %s.max", context, context)
	}

	entries := make([]attributeKeySourceFile, 0, len(obj.Sources)+1)
	if obj.Key != nil {
		mult := 1.0
		if obj.Multiplier != nil {
			mult = *obj.Multiplier
		}
		entries = append(entries, attributeKeySourceFile{Key: *obj.Key, Multiplier: &mult})
	}
	entries = append(entries, obj.Sources...)

	for i, e := range entries {
		if e.Key == "" {
			return AttributeSource{}, fmt.Errorf("%s.sources[%d].key must not be empty", context, i)
		}
		mult := 1.0
		if e.Multiplier != nil {
			mult = *e.Multiplier
		}
		result.Sources = append(result.Sources, AttributeKeySource{Key: e.Key, Multiplier: mult})
	}
	return result, nil
}

func parseOverlayStyle(f overlayStyleFile, context string) (OverlayStyle, error) {
	if f.Biome == nil && f.SurfaceBlock == nil && f.SubsurfaceBlock == nil && f.TopThickness == nil && f.Extrusion == nil {
		return OverlayStyle{}, fmt.Errorf("%s must set at least one of biome, surface_block, subsurface_block, top_thickness, or extrusion", context)
	}
	var out OverlayStyle
	if f.Biome != nil {
		b := block.Biome(*f.Biome)
		out.Biome = &b
	}
	if f.SurfaceBlock != nil {
		b := block.ID(*f.SurfaceBlock)
		out.SurfaceBlock = &b
	}
	if f.SubsurfaceBlock != nil {
		b := block.ID(*f.SubsurfaceBlock)
		out.SubsurfaceBlock = &b
	}
	if f.TopThickness != nil {
		if *f.TopThickness == 0 {
			return OverlayStyle{}, fmt.Errorf("%s.top_thickness must be greater than 0 when provided", context)
		}
		t := uint8(*f.TopThickness)
		out.TopThickness = &t
	}
	if f.Extrusion != nil {
		height, err := parseAttributeSource(f.Extrusion.HeightM, context+".extrusion.height_m", 0)
		if err != nil {
			return OverlayStyle{}, err
		}
		ext := &ExtrusionStyle{Height: height}
		if f.Extrusion.Block != nil {
			b := block.ID(*f.Extrusion.Block)
			ext.Block = &b
		}
		out.Extrusion = ext
	}
	return out, nil
}

func parseOsmConfig(f osmConfigFile) (*OsmConfig, error) {
	enabled := boolOr(f.Enabled, true)
	if enabled && len(f.Layers) == 0 {
		return nil, fmt.Errorf("osm.layers must contain at least one entry when osm.enabled is true")
	}

	layers := make([]OsmLayer, 0, len(f.Layers))
	for i, lf := range f.Layers {
		layer, err := parseOsmLayer(lf, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("layers[%d]: %w", i, err)
		}
		layers = append(layers, layer)
	}

	return &OsmConfig{
		Enabled:     enabled,
		OverpassURL: strOr(f.OverpassURL, "https://overpass-api.de/api/interpreter"),
		BboxMarginM: maxFloat(f64Or(f.BboxMarginM, 300.0), 0),
		Layers:      layers,
	}, nil
}

func parseOsmLayer(f osmLayerFile, order uint32) (OsmLayer, error) {
	if f.Name == "" {
		return OsmLayer{}, fmt.Errorf("name must not be empty")
	}
	if f.Query == "" {
		return OsmLayer{}, fmt.Errorf("query must not be empty")
	}
	geometry := GeometryPolygon
	if f.Geometry != nil && *f.Geometry == "line" {
		geometry = GeometryLine
	}
	width, err := parseAttributeSource(f.WidthM, "width_m", 0.5)
	if err != nil {
		return OsmLayer{}, err
	}
	overlayStyle, err := parseOverlayStyle(f.Style, "style")
	if err != nil {
		return OsmLayer{}, err
	}
	layerIndex := int32(0)
	if f.LayerIndex != nil {
		layerIndex = *f.LayerIndex
	} else if f.Priority != nil {
		layerIndex = int32(*f.Priority)
	}
	return OsmLayer{
		Name:           f.Name,
		Geometry:       geometry,
		Query:          f.Query,
		Width:          width,
		Style:          overlayStyle,
		LayerIndex:     layerIndex,
		InsertionOrder: order,
	}, nil
}

func parseWmtsConfig(f wmtsConfigFile) (*WmtsConfig, error) {
	format := strOr(f.Format, "image/png")
	maxTiles := u32Or(f.MaxTiles, 2048)
	if maxTiles == 0 {
		maxTiles = 1
	}
	if !f.Enabled {
		return &WmtsConfig{Enabled: false, Format: format, MaxTiles: maxTiles}, nil
	}

	if f.CapabilitiesURL == nil || *f.CapabilitiesURL == "" {
		return nil, fmt.Errorf("capabilities_url is required when wmts.enabled = true")
	}
	if f.Layer == nil || *f.Layer == "" {
		return nil, fmt.Errorf("layer is required when wmts.enabled = true")
	}
	if f.TileMatrixSet == nil || *f.TileMatrixSet == "" {
		return nil, fmt.Errorf("tile_matrix_set is required when wmts.enabled = true")
	}
	if f.TileMatrix == nil {
		return nil, fmt.Errorf("tile_matrix is required when wmts.enabled = true")
	}
	if len(f.Colors) == 0 {
		return nil, fmt.Errorf("colors must contain at least one rule when wmts.enabled = true")
	}

	colors := make([]WmtsColorRule, 0, len(f.Colors))
	for i, cf := range f.Colors {
		rule, err := parseWmtsColorRule(cf, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("colors[%d]: %w", i, err)
		}
		colors = append(colors, rule)
	}

	styleID := ""
	if f.StyleID != nil {
		if *f.StyleID == "" {
			return nil, fmt.Errorf("style_id must not be empty when provided")
		}
		styleID = *f.StyleID
	}

	return &WmtsConfig{
		Enabled:         true,
		CapabilitiesURL: *f.CapabilitiesURL,
		Layer:           *f.Layer,
		StyleID:         styleID,
		TileMatrixSet:   *f.TileMatrixSet,
		TileMatrix:      *f.TileMatrix,
		Format:          format,
		BboxMarginM:     maxFloat(f64Or(f.BboxMarginM, 0), 0),
		MaxTiles:        maxTiles,
		Colors:          colors,
	}, nil
}

func parseWmtsColorRule(f wmtsColorRuleFile, order uint32) (WmtsColorRule, error) {
	r, g, b, a, err := parseHexColor(f.Color)
	if err != nil {
		return WmtsColorRule{}, err
	}
	tolerance := uint8(0)
	if f.Tolerance != nil {
		tolerance = *f.Tolerance
	}
	alphaThreshold := uint8(1)
	if f.AlphaThreshold != nil {
		alphaThreshold = *f.AlphaThreshold
	}
	overlayStyle, err := parseOverlayStyle(f.Style, "style")
	if err != nil {
		return WmtsColorRule{}, err
	}
	layerIndex := int32(0)
	if f.LayerIndex != nil {
		layerIndex = *f.LayerIndex
	} else if f.Priority != nil {
		layerIndex = int32(*f.Priority)
	}
	return WmtsColorRule{
		R: r, G: g, B: b, A: a,
		Tolerance:      tolerance,
		AlphaThreshold: alphaThreshold,
		Style:          overlayStyle,
		LayerIndex:     layerIndex,
		InsertionOrder: order,
	}, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
