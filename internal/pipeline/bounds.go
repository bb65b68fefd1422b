package pipeline

import (
	"fmt"
	"math"

	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/geotiff"
)

// BoundsResult is the union model-space extent of every .tif file found
// in a directory, grounded on original_source/src/bounds.rs's run_bounds.
// OriginX/OriginZ is the model-space top-left corner of the first tile in
// sorted path order: the origin generation maps to world block (0,0).
type BoundsResult struct {
	TifCount               int
	MinX, MaxX, MinZ, MaxZ float64
	OriginX, OriginZ       float64
}

// Width reports the bounds' extent along X, in metres.
func (b BoundsResult) Width() float64 { return b.MaxX - b.MinX }

// Depth reports the bounds' extent along Z, in metres.
func (b BoundsResult) Depth() float64 { return b.MaxZ - b.MinZ }

// SuggestedFlag formats the result as a ready-to-paste --bounds value:
// the model-space extent converted to world-block coordinates.
func (b BoundsResult) SuggestedFlag() string {
	minX, minZ := coords.ModelToWorld(b.MinX, b.MaxZ, b.OriginX, b.OriginZ)
	maxX, maxZ := coords.ModelToWorld(b.MaxX, b.MinZ, b.OriginX, b.OriginZ)
	return fmt.Sprintf("%d,%d,%d,%d", minX, minZ, maxX, maxZ)
}

// Bounds computes the union extent of every .tif file in dir, reading
// only each file's header (internal/geotiff.Extent) rather than
// decoding its full pixel grid.
func Bounds(dir string) (BoundsResult, error) {
	paths, err := collectTifs(dir)
	if err != nil {
		return BoundsResult{}, err
	}
	if len(paths) == 0 {
		return BoundsResult{}, fmt.Errorf("no .tif files found in %s", dir)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	var originX, originZ float64
	for i, path := range paths {
		transform, width, height, err := geotiff.Extent(path)
		if err != nil {
			return BoundsResult{}, err
		}
		if i == 0 {
			originX, originZ = transform.ModelCoord(0, 0)
		}
		corners := [4][2]float64{{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)}}
		for _, c := range corners {
			x, y := transform.ModelCoord(c[0], c[1])
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minZ {
				minZ = y
			}
			if y > maxZ {
				maxZ = y
			}
		}
	}

	return BoundsResult{TifCount: len(paths), MinX: minX, MaxX: maxX, MinZ: minZ, MaxZ: maxZ, OriginX: originX, OriginZ: originZ}, nil
}
