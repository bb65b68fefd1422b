// Package mosaic merges decoded heightmap tiles (internal/geotiff.Tile)
// into a single dense elevation grid in world block coordinates, per
// spec.md §4.2. Grounded on original_source/src/world.rs's WorldBuilder,
// which performs the same raster-to-world merge before chunk generation.
package mosaic

import "math"

// Grid is a dense elevation surface over world block coordinates
// [MinX,MaxX) x [MinZ,MaxZ). Samples absent from every input tile hold
// NaN. OriginModelX/Z is the model-space coordinate of world block
// (0,0), taken from the first ingested tile (spec.md §3).
type Grid struct {
	MinX, MinZ, MaxX, MaxZ     int
	OriginModelX, OriginModelZ float64
	MinHeight, MaxHeight       float64

	samples []float32
}

func newGrid(minX, minZ, maxX, maxZ int, originX, originZ float64) *Grid {
	w := maxX - minX
	d := maxZ - minZ
	samples := make([]float32, w*d)
	nan := float32(math.NaN())
	for i := range samples {
		samples[i] = nan
	}
	return &Grid{
		MinX: minX, MinZ: minZ, MaxX: maxX, MaxZ: maxZ,
		OriginModelX: originX, OriginModelZ: originZ,
		MinHeight: math.Inf(1), MaxHeight: math.Inf(-1),
		samples: samples,
	}
}

func (g *Grid) Width() int { return g.MaxX - g.MinX }
func (g *Grid) Depth() int { return g.MaxZ - g.MinZ }

func (g *Grid) inBounds(x, z int) bool {
	return x >= g.MinX && x < g.MaxX && z >= g.MinZ && z < g.MaxZ
}

// At returns the elevation at world block (x, z), or NaN if out of
// range or no tile covered that cell (spec.md §4.6 step 1: no-data
// columns render as full-air).
func (g *Grid) At(x, z int) float32 {
	if !g.inBounds(x, z) {
		return float32(math.NaN())
	}
	return g.samples[(z-g.MinZ)*g.Width()+(x-g.MinX)]
}

// set overwrites the sample at (x, z): later tiles win on overlap
// (spec.md §4.2 "last tile wins").
func (g *Grid) set(x, z int, v float32) {
	if !g.inBounds(x, z) || math.IsNaN(float64(v)) {
		return
	}
	g.samples[(z-g.MinZ)*g.Width()+(x-g.MinX)] = v
	fv := float64(v)
	if fv < g.MinHeight {
		g.MinHeight = fv
	}
	if fv > g.MaxHeight {
		g.MaxHeight = fv
	}
}
