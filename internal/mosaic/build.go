package mosaic

import (
	"fmt"
	"math"

	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/geotiff"
)

// Bounds is a world-block crop rectangle, as given by the CLI's
// --bounds flag: [MinX,MaxX) x [MinZ,MaxZ).
type Bounds struct {
	MinX, MinZ, MaxX, MaxZ int
}

const resolutionTolerance = 1e-6

// Build merges tiles into a single Grid. All tiles must share the same
// pixel resolution (spec.md §4.2's consistent-resolution invariant);
// a mismatch is reported as ferr.InconsistentTileResolution. The first
// tile in the slice fixes the mosaic's model origin. bounds, if
// non-nil, crops the result to a world-block rectangle before tiles
// wholly outside it are skipped entirely.
func Build(tiles []geotiff.Tile, bounds *Bounds) (*Grid, error) {
	if len(tiles) == 0 {
		return nil, ferr.New(ferr.Config, "", fmt.Errorf("no heightmap tiles supplied"))
	}

	dx0, dy0 := tiles[0].Transform.PixelSize()
	for i := 1; i < len(tiles); i++ {
		dx, dy := tiles[i].Transform.PixelSize()
		if math.Abs(dx-dx0) > resolutionTolerance || math.Abs(dy-dy0) > resolutionTolerance {
			return nil, ferr.New(ferr.InconsistentTileResolution, "",
				fmt.Errorf("tile %d has pixel size (%g,%g), expected (%g,%g)", i, dx, dy, dx0, dy0))
		}
	}

	originX, originZ := tiles[0].Origin()

	minX, minZ := math.MaxInt, math.MaxInt
	maxX, maxZ := math.MinInt, math.MinInt
	for _, t := range tiles {
		for _, corner := range t.CornerModelCoords() {
			x, z := coords.ModelToWorld(corner[0], corner[1], originX, originZ)
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if z < minZ {
				minZ = z
			}
			if z > maxZ {
				maxZ = z
			}
		}
	}
	// Corner (col=Width, row=Height) already lands one block past the last
	// pixel's world coordinate, so minX/minZ..maxX/maxZ is already the
	// half-open range the grid wants — no extra +1 needed.

	if bounds != nil {
		if bounds.MinX > minX {
			minX = bounds.MinX
		}
		if bounds.MinZ > minZ {
			minZ = bounds.MinZ
		}
		if bounds.MaxX < maxX {
			maxX = bounds.MaxX
		}
		if bounds.MaxZ < maxZ {
			maxZ = bounds.MaxZ
		}
	}
	if maxX <= minX || maxZ <= minZ {
		return nil, ferr.New(ferr.Bounds, "", fmt.Errorf("requested bounds do not intersect the supplied tiles"))
	}

	grid := newGrid(minX, minZ, maxX, maxZ, originX, originZ)

	for _, t := range tiles {
		tile := t
		paintTile(grid, &tile, originX, originZ)
	}

	return grid, nil
}

// paintTile copies one tile's samples into grid, converting each pixel's
// model coordinate to a world block via coords.ModelToWorld — which
// already performs the north-up-to-increasing-Z inversion (spec.md
// §4.2's "Y axis of the source raster is flipped").
func paintTile(grid *Grid, t *geotiff.Tile, originX, originZ float64) {
	for row := 0; row < t.Height; row++ {
		for col := 0; col < t.Width; col++ {
			v := t.Sample(col, row)
			if math.IsNaN(float64(v)) {
				continue
			}
			mx, mz := t.Transform.ModelCoord(float64(col), float64(row))
			x, z := coords.ModelToWorld(mx, mz, originX, originZ)
			grid.set(x, z, v)
		}
	}
}
