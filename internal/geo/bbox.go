package geo

import (
	"fmt"
	"math"
)

// WorldBoundingBox is a mosaic's extent reprojected back to Lambert93
// model-space metres, expanded by a margin (spec.md §4.5 "bounding box
// = DEM bounds expanded by bbox_margin_m").
type WorldBoundingBox struct {
	MinX, MaxX, MinZ, MaxZ float64
}

// BoundingBoxFromWorld converts a world-block extent [minX,maxX) x
// [minZ,maxZ) back to Lambert93 metres around originX/originZ,
// expanded by margin on every side. Mirrors
// original_source/src/geo_utils.rs's WorldBoundingBox::from_stats,
// inverting the Z flip the coordinate mapper applies going the other
// way.
func BoundingBoxFromWorld(minX, maxX, minZ, maxZ int, originX, originZ, margin float64) WorldBoundingBox {
	if margin < 0 {
		margin = 0
	}
	return WorldBoundingBox{
		MinX: originX + float64(minX) - margin,
		MaxX: originX + float64(maxX) + margin,
		MinZ: originZ - float64(maxZ) - margin,
		MaxZ: originZ - float64(minZ) + margin,
	}
}

// LambertCorners returns the box's four corners in Lambert93 space.
func (b WorldBoundingBox) LambertCorners() [4][2]float64 {
	return [4][2]float64{
		{b.MinX, b.MinZ},
		{b.MinX, b.MaxZ},
		{b.MaxX, b.MinZ},
		{b.MaxX, b.MaxZ},
	}
}

// ToLatLon reprojects the box's corners to WGS84 and returns their
// union (spec.md §4.5 "reprojected to WGS84 lat/lon for the {{bbox}}
// token").
func (b WorldBoundingBox) ToLatLon() LatLonBounds {
	south, west := math.Inf(1), math.Inf(1)
	north, east := math.Inf(-1), math.Inf(-1)
	for _, c := range b.LambertCorners() {
		lat, lon := Lambert93ToLatLon(c[0], c[1])
		if lat < south {
			south = lat
		}
		if lat > north {
			north = lat
		}
		if lon < west {
			west = lon
		}
		if lon > east {
			east = lon
		}
	}
	return LatLonBounds{South: south, North: north, West: west, East: east}
}

// LatLonBounds is a WGS84 bounding box.
type LatLonBounds struct {
	South, North, West, East float64
}

// ToOverpassBBox formats the bounds as Overpass QL's south,west,north,east
// {{bbox}} token.
func (b LatLonBounds) ToOverpassBBox() string {
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", b.South, b.West, b.North, b.East)
}
