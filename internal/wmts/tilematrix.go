package wmts

// TileMatrix is one zoom level of a WMTS TileMatrixSet, grounded on
// other_examples/PDOK-texel__tilematrix.go's MinX/MaxY/TileSize/CellSize
// fields, generalized here from a single fixed pyramid level to values
// parsed per-level out of a GetCapabilities document.
type TileMatrix struct {
	TopLeftX, TopLeftY               float64
	ScaleDenominator                 float64
	TileWidth, TileHeight            uint32
	MatrixWidth, MatrixHeight        uint32
}

// standardPixelSizeM is the OGC WMTS standard rendering pixel size (0.28mm)
// used to derive a tile matrix's ground resolution from its scale
// denominator.
const standardPixelSizeM = 0.00028

// Resolution returns the tile matrix's ground resolution in metres per
// pixel.
func (m TileMatrix) Resolution() float64 {
	return m.ScaleDenominator * standardPixelSizeM
}

// GridSize returns the full extent, in metres, this matrix's tiles span.
func (m TileMatrix) GridSize() (width, height float64) {
	res := m.Resolution()
	return res * float64(m.TileWidth) * float64(m.MatrixWidth), res * float64(m.TileHeight) * float64(m.MatrixHeight)
}

// TileCoordinate is a single tile's row/col address within a matrix,
// following other_examples/eak1mov-go-libtiles__tile.go's XYZ scheme
// (Col plays X, Row plays Y).
type TileCoordinate struct {
	Row, Col uint32
}
