package wmts

import (
	"fmt"
	"math"

	"github.com/francegen/francegen/internal/geo"
)

// Coverage is the rectangular row/col range of tiles a bounding box
// overlaps, plus the flat tile list (spec.md §4.5 "WMTS tile
// prefetch"). Mirrors original_source/src/wmts.rs's TileCoverage.
type Coverage struct {
	Tiles                          []TileCoordinate
	ColStart, ColEnd, RowStart, RowEnd uint32
}

// Contains reports whether (col,row) falls within the covered range.
func (c Coverage) Contains(col, row uint32) bool {
	return col >= c.ColStart && col <= c.ColEnd && row >= c.RowStart && row <= c.RowEnd
}

// ComputeCoverage finds every tile of matrix that overlaps bbox
// (already in the matrix's Lambert93 metres), clamped to limits if
// given.
func ComputeCoverage(bbox geo.WorldBoundingBox, matrix TileMatrix, limits *TileMatrixLimits) Coverage {
	minX, maxX := bbox.MinX, bbox.MaxX
	minY, maxY := bbox.MinZ, bbox.MaxZ

	resolution := matrix.Resolution()
	tileWidthM := resolution * float64(matrix.TileWidth)
	tileHeightM := resolution * float64(matrix.TileHeight)

	colStart := int64(math.Floor((minX - matrix.TopLeftX) / tileWidthM))
	colEnd := int64(math.Ceil((maxX - matrix.TopLeftX) / tileWidthM))
	if colStart > colEnd {
		colStart, colEnd = colEnd, colStart
	}
	rowStart := int64(math.Floor((matrix.TopLeftY - maxY) / tileHeightM))
	rowEnd := int64(math.Ceil((matrix.TopLeftY - minY) / tileHeightM))
	if rowStart > rowEnd {
		rowStart, rowEnd = rowEnd, rowStart
	}

	colStart = clampI64(colStart, 0, int64(matrix.MatrixWidth)-1)
	colEnd = clampI64(colEnd, 0, int64(matrix.MatrixWidth)-1)
	rowStart = clampI64(rowStart, 0, int64(matrix.MatrixHeight)-1)
	rowEnd = clampI64(rowEnd, 0, int64(matrix.MatrixHeight)-1)

	if limits != nil {
		colStart = maxI64(colStart, int64(limits.MinCol))
		colEnd = minI64(colEnd, int64(limits.MaxCol))
		rowStart = maxI64(rowStart, int64(limits.MinRow))
		rowEnd = minI64(rowEnd, int64(limits.MaxRow))
	}

	if colStart > colEnd || rowStart > rowEnd {
		return Coverage{}
	}

	var tiles []TileCoordinate
	for row := rowStart; row <= rowEnd; row++ {
		for col := colStart; col <= colEnd; col++ {
			tiles = append(tiles, TileCoordinate{Row: uint32(row), Col: uint32(col)})
		}
	}
	return Coverage{
		Tiles:    tiles,
		ColStart: uint32(colStart), ColEnd: uint32(colEnd),
		RowStart: uint32(rowStart), RowEnd: uint32(rowEnd),
	}
}

// ColumnSample is the tile+pixel a Lambert93 point lands on.
type ColumnSample struct {
	Row, Col       uint32
	PixelX, PixelY int
}

// LocatePixel maps a Lambert93 point to the tile and pixel within it
// that covers that point, or ok=false if the point falls outside the
// matrix.
func LocatePixel(lambertX, lambertY float64, matrix TileMatrix) (sample ColumnSample, ok bool) {
	resolution := matrix.Resolution()
	pixelX := (lambertX - matrix.TopLeftX) / resolution
	pixelY := (matrix.TopLeftY - lambertY) / resolution
	if math.IsNaN(pixelX) || math.IsNaN(pixelY) || pixelX < 0 || pixelY < 0 {
		return ColumnSample{}, false
	}

	tileWidth := float64(matrix.TileWidth)
	tileHeight := float64(matrix.TileHeight)
	col := math.Floor(pixelX / tileWidth)
	row := math.Floor(pixelY / tileHeight)
	if col < 0 || row < 0 || col >= float64(matrix.MatrixWidth) || row >= float64(matrix.MatrixHeight) {
		return ColumnSample{}, false
	}

	px := int(math.Floor(pixelX - col*tileWidth))
	py := int(math.Floor(pixelY - row*tileHeight))
	if px < 0 {
		px = 0
	}
	if py < 0 {
		py = 0
	}
	if px >= int(matrix.TileWidth) {
		px = int(matrix.TileWidth) - 1
	}
	if py >= int(matrix.TileHeight) {
		py = int(matrix.TileHeight) - 1
	}
	return ColumnSample{Row: uint32(row), Col: uint32(col), PixelX: px, PixelY: py}, true
}

func clampI64(v, lo, hi int64) int64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// ExtensionForFormat maps a WMTS image MIME format to a cache file
// extension, per spec.md §4.5 "png and jpeg are supported".
func ExtensionForFormat(format string) (string, error) {
	switch format {
	case "image/png":
		return "png", nil
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	default:
		return "", fmt.Errorf("unsupported WMTS image format %q (png and jpeg are supported)", format)
	}
}
