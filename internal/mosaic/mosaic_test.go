package mosaic

import (
	"math"
	"testing"

	"github.com/francegen/francegen/internal/geotiff"
)

func flatTile(originX, originY float64, w, h int, value float32) geotiff.Tile {
	samples := make([]float32, w*h)
	for i := range samples {
		samples[i] = value
	}
	return geotiff.Tile{
		Transform: geotiff.AffineTransform{OriginX: originX, PixelWidth: 1, OriginY: originY, PixelHeight: -1},
		Width:     w,
		Height:    h,
		Samples:   samples,
	}
}

func TestBuildSingleTileCoversExpectedExtent(t *testing.T) {
	tile := flatTile(1000, 2000, 10, 10, 100)
	grid, err := Build([]geotiff.Tile{tile}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Width() != 10 || grid.Depth() != 10 {
		t.Fatalf("got %dx%d, want 10x10", grid.Width(), grid.Depth())
	}
	if grid.MinX != 0 || grid.MinZ != 0 {
		t.Fatalf("expected mosaic to start at world (0,0), got (%d,%d)", grid.MinX, grid.MinZ)
	}
	for z := grid.MinZ; z < grid.MaxZ; z++ {
		for x := grid.MinX; x < grid.MaxX; x++ {
			if v := grid.At(x, z); v != 100 {
				t.Fatalf("At(%d,%d)=%v, want 100", x, z, v)
			}
		}
	}
}

func TestBuildRejectsInconsistentResolution(t *testing.T) {
	a := flatTile(0, 0, 4, 4, 10)
	b := flatTile(4, 0, 4, 4, 20)
	b.Transform.PixelWidth = 2
	_, err := Build([]geotiff.Tile{a, b}, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched tile resolution")
	}
}

func TestBuildLaterTileWinsOnOverlap(t *testing.T) {
	a := flatTile(0, 0, 4, 4, 10)
	b := flatTile(0, 0, 4, 4, 99)
	grid, err := Build([]geotiff.Tile{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := grid.At(0, 0); v != 99 {
		t.Fatalf("expected later tile to win, got %v", v)
	}
}

func TestBuildCropsToBounds(t *testing.T) {
	tile := flatTile(0, 0, 10, 10, 5)
	bounds := &Bounds{MinX: 2, MinZ: 2, MaxX: 6, MaxZ: 6}
	grid, err := Build([]geotiff.Tile{tile}, bounds)
	if err != nil {
		t.Fatal(err)
	}
	if grid.Width() != 4 || grid.Depth() != 4 {
		t.Fatalf("got %dx%d, want 4x4", grid.Width(), grid.Depth())
	}
}

func TestBuildNoDataOutsideTileIsNaN(t *testing.T) {
	tile := flatTile(0, 0, 4, 4, 5)
	bounds := &Bounds{MinX: 0, MinZ: 0, MaxX: 8, MaxZ: 8}
	grid, err := Build([]geotiff.Tile{tile}, bounds)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(grid.At(7, 7))) {
		t.Fatalf("expected NaN outside tile coverage, got %v", grid.At(7, 7))
	}
}

func TestBuildTracksMinMaxHeight(t *testing.T) {
	a := flatTile(0, 0, 2, 2, 10)
	b := flatTile(2, 0, 2, 2, 50)
	grid, err := Build([]geotiff.Tile{a, b}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if grid.MinHeight != 10 || grid.MaxHeight != 50 {
		t.Fatalf("got min=%v max=%v, want 10/50", grid.MinHeight, grid.MaxHeight)
	}
}
