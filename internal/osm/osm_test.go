package osm

import (
	"testing"

	"github.com/francegen/francegen/internal/block"
	"github.com/francegen/francegen/internal/config"
	"github.com/francegen/francegen/internal/overlay"
	"github.com/francegen/francegen/internal/style"
)

func TestBuildQuerySubstitutesBboxAndWrapsHeader(t *testing.T) {
	got := buildQuery(`way["highway"]({{bbox}});`, "1,2,3,4")
	want := `[out:json][timeout:90];way["highway"](1,2,3,4);out geom;`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildQueryAppendsMissingSemicolon(t *testing.T) {
	got := buildQuery(`way["highway"]({{bbox}})`, "1,2,3,4")
	want := `[out:json][timeout:90];way["highway"](1,2,3,4);out geom;`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRasterizeLineProducesOneDirectivePerChunk(t *testing.T) {
	builder := overlay.NewBuilder()
	path := [][2]int{{0, 0}, {40, 0}}
	painted := rasterizeLine(path, 2.0, 5, 1, style.StylePatch{}, builder)
	if painted == 0 {
		t.Fatal("expected at least one painted column")
	}
	idx := builder.Build()
	if idx.Empty() {
		t.Fatal("expected a non-empty index")
	}
	if len(idx.DirectivesFor(0, 0)) == 0 {
		t.Fatal("expected a directive touching chunk (0,0)")
	}
	if len(idx.DirectivesFor(2, 0)) == 0 {
		t.Fatal("expected a directive touching chunk (2,0), since the line runs 40 blocks")
	}
}

func TestRasterizePolygonFillsInterior(t *testing.T) {
	builder := overlay.NewBuilder()
	square := [][2]int{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	painted := rasterizePolygon(square, 1, 0, style.StylePatch{}, builder)
	if painted < 80 || painted > 100 {
		t.Fatalf("expected roughly 100 interior columns, got %d", painted)
	}
}

func TestPointInPolygonBasicSquare(t *testing.T) {
	ring := [][2]int{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	if !pointInPolygon(5, 5, ring) {
		t.Fatal("expected center point to be inside")
	}
	if pointInPolygon(15, 15, ring) {
		t.Fatal("expected far point to be outside")
	}
}

func TestBuildPatchResolvesExtrusionFromTags(t *testing.T) {
	blockID := block.ID("minecraft:bricks")
	overlayStyle := config.OverlayStyle{
		SurfaceBlock: &blockID,
		Extrusion: &config.ExtrusionStyle{
			Height: config.FixedAttributeSource(3),
		},
	}
	patch := buildPatch(overlayStyle, nil)
	if patch.Extrusion == nil {
		t.Fatal("expected a resolved extrusion")
	}
	if patch.Extrusion.HeightBlocks != 3 {
		t.Fatalf("expected height 3, got %d", patch.Extrusion.HeightBlocks)
	}
	if patch.Extrusion.Block != blockID {
		t.Fatalf("expected extrusion to fall back to the surface block, got %s", patch.Extrusion.Block)
	}
}
