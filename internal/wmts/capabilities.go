// Package wmts fetches a WMTS GetCapabilities document, resolves the
// requested layer/style/tile-matrix, prefetches the tiles a mosaic's
// bounding box overlaps, and rasterizes per-pixel color rules into
// style.PaintDirectives. Grounded on
// original_source/src/wmts.rs's capability parsing and tile coverage
// math, and on other_examples/PDOK-texel__tilematrix.go's TileMatrix
// grid arithmetic (GridSize/MinY/MaxX generalized here to a full tile
// matrix set lookup) plus other_examples/eak1mov-go-libtiles__tile.go's
// row/col tile-coordinate convention.
//
// The original used a PROJ binding to reproject Lambert93 into the
// tile matrix set's native CRS; no such binding exists anywhere in the
// example corpus, and the terrain config fixes the working CRS to
// EPSG:2154 (spec.md's Lambert93 assumption), so this package treats
// the tile matrix's TopLeftCorner/resolution as already expressed in
// Lambert93 metres rather than performing a second reprojection.
package wmts

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/francegen/francegen/internal/fetch"
)

type capabilitiesDoc struct {
	XMLName  xml.Name       `xml:"Capabilities"`
	Contents capContents    `xml:"Contents"`
	OpsMeta  capOperations  `xml:"OperationsMetadata"`
}

type capOperations struct {
	Operations []capOperation `xml:"Operation"`
}

type capOperation struct {
	Name string  `xml:"name,attr"`
	Get  []capGet `xml:"DCP>HTTP>Get"`
}

type capGet struct {
	Href string `xml:"href,attr"`
}

type capContents struct {
	Layers      []capLayer      `xml:"Layer"`
	MatrixSets  []capMatrixSet  `xml:"TileMatrixSet"`
}

type capLayer struct {
	Identifier      string             `xml:"Identifier"`
	Formats         []string           `xml:"Format"`
	Styles          []capStyle         `xml:"Style"`
	MatrixSetLinks  []capMatrixSetLink `xml:"TileMatrixSetLink"`
}

type capStyle struct {
	IsDefault  string `xml:"isDefault,attr"`
	Identifier string `xml:"Identifier"`
}

type capMatrixSetLink struct {
	TileMatrixSet string          `xml:"TileMatrixSet"`
	Limits        []capLimitEntry `xml:"TileMatrixSetLimits>TileMatrixLimits"`
}

type capLimitEntry struct {
	TileMatrix  string `xml:"TileMatrix"`
	MinTileRow  uint32 `xml:"MinTileRow"`
	MaxTileRow  uint32 `xml:"MaxTileRow"`
	MinTileCol  uint32 `xml:"MinTileCol"`
	MaxTileCol  uint32 `xml:"MaxTileCol"`
}

type capMatrixSet struct {
	Identifier   string           `xml:"Identifier"`
	SupportedCRS string           `xml:"SupportedCRS"`
	Matrices     []capTileMatrix  `xml:"TileMatrix"`
}

type capTileMatrix struct {
	Identifier        string  `xml:"Identifier"`
	ScaleDenominator  float64 `xml:"ScaleDenominator"`
	TopLeftCorner     string  `xml:"TopLeftCorner"`
	TileWidth         uint32  `xml:"TileWidth"`
	TileHeight        uint32  `xml:"TileHeight"`
	MatrixWidth       uint32  `xml:"MatrixWidth"`
	MatrixHeight      uint32  `xml:"MatrixHeight"`
}

// Capabilities is the subset of a GetCapabilities response this package
// needs, resolved down to the requested layer.
type Capabilities struct {
	GetTileURL     string
	Formats        []string
	Styles         []string
	DefaultStyle   string
	Limits         map[string]TileMatrixLimits
	SupportedCRS   string
	Matrices       map[string]TileMatrix
}

// TileMatrixLimits restricts a matrix's usable row/col range.
type TileMatrixLimits struct {
	MinRow, MaxRow, MinCol, MaxCol uint32
}

// FetchCapabilities downloads and parses a WMTS GetCapabilities
// document, resolving it down to layerName/matrixSetName.
func FetchCapabilities(ctx context.Context, f *fetch.Fetcher, url, layerName, matrixSetName string) (*Capabilities, error) {
	body, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc capabilitiesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing WMTS capabilities: %w", err)
	}

	getTileURL, err := findGetTileURL(doc.OpsMeta)
	if err != nil {
		return nil, err
	}

	layer, err := findLayer(doc.Contents.Layers, layerName)
	if err != nil {
		return nil, err
	}
	matrixSet, err := findMatrixSet(doc.Contents.MatrixSets, matrixSetName)
	if err != nil {
		return nil, err
	}

	caps := &Capabilities{
		GetTileURL:   getTileURL,
		Formats:      layer.Formats,
		SupportedCRS: normalizeCRS(matrixSet.SupportedCRS),
		Limits:       make(map[string]TileMatrixLimits),
		Matrices:     make(map[string]TileMatrix),
	}
	for _, s := range layer.Styles {
		caps.Styles = append(caps.Styles, s.Identifier)
		if s.IsDefault == "true" {
			caps.DefaultStyle = s.Identifier
		}
	}
	for _, link := range layer.MatrixSetLinks {
		if link.TileMatrixSet != matrixSetName {
			continue
		}
		for _, l := range link.Limits {
			caps.Limits[l.TileMatrix] = TileMatrixLimits{
				MinRow: l.MinTileRow, MaxRow: l.MaxTileRow,
				MinCol: l.MinTileCol, MaxCol: l.MaxTileCol,
			}
		}
	}
	for _, m := range matrixSet.Matrices {
		x, y, err := parseCorner(m.TopLeftCorner)
		if err != nil {
			return nil, fmt.Errorf("tile matrix %q: %w", m.Identifier, err)
		}
		caps.Matrices[m.Identifier] = TileMatrix{
			TopLeftX: x, TopLeftY: y,
			ScaleDenominator: m.ScaleDenominator,
			TileWidth:        m.TileWidth,
			TileHeight:       m.TileHeight,
			MatrixWidth:      m.MatrixWidth,
			MatrixHeight:     m.MatrixHeight,
		}
	}
	return caps, nil
}

func findGetTileURL(ops capOperations) (string, error) {
	for _, op := range ops.Operations {
		if op.Name != "GetTile" {
			continue
		}
		if len(op.Get) > 0 {
			return op.Get[0].Href, nil
		}
	}
	return "", fmt.Errorf("WMTS capabilities missing OperationsMetadata/GetTile URL")
}

func findLayer(layers []capLayer, name string) (*capLayer, error) {
	for i := range layers {
		if layers[i].Identifier == name {
			return &layers[i], nil
		}
	}
	return nil, fmt.Errorf("layer %q not found in WMTS capabilities", name)
}

func findMatrixSet(sets []capMatrixSet, name string) (*capMatrixSet, error) {
	for i := range sets {
		if sets[i].Identifier == name {
			return &sets[i], nil
		}
	}
	return nil, fmt.Errorf("tile matrix set %q not found in WMTS capabilities", name)
}

func parseCorner(raw string) (x, y float64, err error) {
	_, err = fmt.Sscanf(raw, "%g %g", &x, &y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid TopLeftCorner %q: %w", raw, err)
	}
	return x, y, nil
}

func normalizeCRS(raw string) string {
	return raw
}
