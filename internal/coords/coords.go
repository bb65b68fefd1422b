// Package coords is the single place every model/world/chunk/region
// coordinate conversion in francegen funnels through. Every raw arithmetic
// on model coordinates outside this package is a bug (spec design note
// "Coordinate Z inversion").
package coords

import "math"

// SectionSide is the width/depth of a chunk column in blocks.
const SectionSide = 16

// RegionSide is the width/depth of a region file in chunks.
const RegionSide = 32

// VerticalShift maps a DEM elevation in metres onto the extended Minecraft
// Y axis this world uses: Y = round(elevation_m) + VerticalShift.
const VerticalShift = -2048

// MinWorldY and MaxWorldY bound the extended Y range this system writes.
const (
	MinWorldY = -2048
	MaxWorldY = 2031
)

// FloorDiv performs arithmetic floor division (rounds toward -Inf for
// negative operands), unlike Go's truncating "/".
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod is the remainder consistent with FloorDiv: always in [0, b).
func FloorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// ModelToWorld converts a real-world model-space coordinate (metres) to a
// world block coordinate, inverting Z so that increasing model Y (north)
// maps to decreasing world Z.
func ModelToWorld(mx, mz, originX, originZ float64) (x, z int) {
	x = int(math.Floor(mx - originX))
	z = int(math.Floor(originZ - mz))
	return
}

// WorldToChunk converts a world block coordinate to its containing chunk
// coordinate.
func WorldToChunk(x, z int) (cx, cz int) {
	return FloorDiv(x, SectionSide), FloorDiv(z, SectionSide)
}

// ChunkToRegion converts a chunk coordinate to its containing region
// coordinate.
func ChunkToRegion(cx, cz int) (rx, rz int) {
	return FloorDiv(cx, RegionSide), FloorDiv(cz, RegionSide)
}

// LocalInChunk returns the 0..15 column offset of a world coordinate
// within its chunk.
func LocalInChunk(x, z int) (lx, lz int) {
	return FloorMod(x, SectionSide), FloorMod(z, SectionSide)
}

// LocalInRegion returns the 0..31 chunk offset within its region.
func LocalInRegion(cx, cz int) (lx, lz int) {
	return FloorMod(cx, RegionSide), FloorMod(cz, RegionSide)
}

// ElevationToY converts a DEM elevation in metres to the clamped world Y
// of the surface block, per spec §4.1/§3: round then shift then clamp.
func ElevationToY(elevationM float64) int {
	y := int(math.Round(elevationM)) + VerticalShift
	if y < MinWorldY {
		return MinWorldY
	}
	if y > MaxWorldY {
		return MaxWorldY
	}
	return y
}

// Locate is the result of the `locate` CLI subcommand: world coordinates,
// the chunk that owns them, and (if a height was supplied) the Y level.
type Locate struct {
	X, Z   int
	CX, CZ int
	Y      *int
}

// LocateFromModel resolves a real-world (model-space) point, and
// optionally its elevation, to world/chunk/Y coordinates.
func LocateFromModel(mx, mz, originX, originZ float64, heightM *float64) Locate {
	x, z := ModelToWorld(mx, mz, originX, originZ)
	cx, cz := WorldToChunk(x, z)
	loc := Locate{X: x, Z: z, CX: cx, CZ: cz}
	if heightM != nil {
		y := ElevationToY(*heightM)
		loc.Y = &y
	}
	return loc
}
