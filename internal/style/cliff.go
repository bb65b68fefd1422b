package style

import "math"

// ElevationAt abstracts the neighbour lookup the cliff analyzer needs,
// satisfied by *mosaic.Grid's At method without creating an import
// cycle between internal/style and internal/mosaic.
type ElevationAt func(x, z int) float32

// ClassifyCliff computes the blended slope angle for world column
// (x, z) against its neighbours within smoothing_radius blocks (the
// grid is 1 metre per block, so a metre radius is a block radius), and
// reports whether it exceeds angleThresholdDegrees (spec.md §4.4).
// NaN neighbours are skipped; fewer than two valid neighbours means the
// column is never a cliff.
func ClassifyCliff(at ElevationAt, x, z int, settings CliffSettings) bool {
	centre := at(x, z)
	if math.IsNaN(float64(centre)) {
		return false
	}

	r := settings.SmoothingRadius
	if r < 1 {
		r = 1
	}

	var maxAngle, sumAngle float64
	count := 0
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			dist := math.Hypot(float64(dx), float64(dz))
			if dist > float64(r) {
				continue
			}
			nv := at(x+dx, z+dz)
			if math.IsNaN(float64(nv)) {
				continue
			}
			delta := math.Abs(float64(nv) - float64(centre))
			angle := math.Atan(delta / dist)
			if angle > maxAngle {
				maxAngle = angle
			}
			sumAngle += angle
			count++
		}
	}

	if count < 2 {
		return false
	}

	avgAngle := sumAngle / float64(count)
	f := settings.SmoothingFactor
	blended := (1-f)*maxAngle + f*avgAngle
	blendedDegrees := blended * 180 / math.Pi
	return blendedDegrees > settings.AngleThresholdDegrees
}
