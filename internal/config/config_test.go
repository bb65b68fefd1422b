package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Style.TopLayerBlock != "minecraft:grass_block" {
		t.Fatalf("unexpected default top_layer_block: %s", cfg.Style.TopLayerBlock)
	}
	if cfg.Style.TopLayerThickness != 1 {
		t.Fatalf("unexpected default thickness: %d", cfg.Style.TopLayerThickness)
	}
	if cfg.Style.EmptyChunkRadius != 32 {
		t.Fatalf("unexpected default empty_chunk_radius: %d", cfg.Style.EmptyChunkRadius)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`{"not_a_real_field": true}`))
	if err == nil {
		t.Fatal("expected schema validation to reject an unknown field")
	}
}

func TestParseBiomeLayers(t *testing.T) {
	raw := `{
		"biome_layers": [
			{"range": {"min": "0m", "max": "300m"}, "biome": "minecraft:plains"},
			{"range": {"min": "300m", "max": "1200m"}, "biome": "minecraft:forest"}
		]
	}`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Style.BiomeLayers) != 2 {
		t.Fatalf("expected 2 biome layers, got %d", len(cfg.Style.BiomeLayers))
	}
	if cfg.Style.BiomeLayers[1].Range.Min != 300 {
		t.Fatalf("expected second layer min=300, got %v", cfg.Style.BiomeLayers[1].Range.Min)
	}
}

func TestParseRejectsZeroThickness(t *testing.T) {
	_, err := Parse([]byte(`{"top_layer_thickness": 0}`))
	if err == nil {
		t.Fatal("expected an error for top_layer_thickness=0")
	}
}

func TestParseOsmFixedWidth(t *testing.T) {
	raw := `{
		"osm": {
			"layers": [
				{"name": "roads", "query": "way[highway]", "width_m": 3, "style": {"surface_block": "minecraft:stone_bricks"}}
			]
		}
	}`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Osm == nil || len(cfg.Osm.Layers) != 1 {
		t.Fatal("expected one OSM layer")
	}
	if cfg.Osm.Layers[0].Width.Resolve(nil) != 3 {
		t.Fatalf("expected fixed width 3, got %v", cfg.Osm.Layers[0].Width.Resolve(nil))
	}
}

func TestParseOsmDynamicWidth(t *testing.T) {
	raw := `{
		"osm": {
			"layers": [
				{"name": "roads", "query": "way[highway]",
				 "width_m": {"default": 3, "min": 1, "max": 10, "sources": [{"key": "width", "multiplier": 1}]},
				 "style": {"surface_block": "minecraft:stone_bricks"}}
			]
		}
	}`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	width := cfg.Osm.Layers[0].Width
	if got := width.Resolve(map[string]string{"width": "7"}); got != 7 {
		t.Fatalf("expected resolved width 7, got %v", got)
	}
	if got := width.Resolve(map[string]string{"width": "50"}); got != 10 {
		t.Fatalf("expected clamp to max 10, got %v", got)
	}
	if got := width.Resolve(nil); got != 3 {
		t.Fatalf("expected fallback to default 3, got %v", got)
	}
}

func TestParseWmtsColorRule(t *testing.T) {
	raw := `{
		"wmts": {
			"enabled": true,
			"capabilities_url": "https://example.test/capabilities",
			"layer": "ortho",
			"tile_matrix_set": "PM",
			"tile_matrix": "15",
			"colors": [
				{"color": "#3388FFFF", "tolerance": 10, "style": {"biome": "minecraft:river"}}
			]
		}
	}`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Wmts.Enabled {
		t.Fatal("expected wmts.enabled true")
	}
	rule := cfg.Wmts.Colors[0]
	if rule.R != 0x33 || rule.G != 0x88 || rule.B != 0xFF || rule.A != 0xFF {
		t.Fatalf("unexpected parsed color: %+v", rule)
	}
	if !rule.Matches(0x33, 0x8a, 0xFE, 255) {
		t.Fatal("expected pixel within tolerance to match")
	}
	if rule.Matches(0x00, 0x00, 0x00, 255) {
		t.Fatal("expected pixel far outside tolerance to not match")
	}
}

func TestParseWmtsRequiresFieldsWhenEnabled(t *testing.T) {
	_, err := Parse([]byte(`{"wmts": {"enabled": true}}`))
	if err == nil {
		t.Fatal("expected an error for an enabled wmts config missing required fields")
	}
}
