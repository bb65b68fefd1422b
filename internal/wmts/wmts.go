package wmts

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/francegen/francegen/internal/config"
	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/fetch"
	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/geo"
	"github.com/francegen/francegen/internal/logx"
	"github.com/francegen/francegen/internal/mosaic"
	"github.com/francegen/francegen/internal/overlay"
	"github.com/francegen/francegen/internal/style"
)

const requestVersion = "1.0.0"

// ApplyOverlays fetches capabilities, prefetches every tile the
// mosaic's bounding box overlaps, and paints matching pixels into
// builder as PaintDirectives (spec.md §4.5 WMTS overlay path).
// Mirrors original_source/src/wmts.rs's apply_wmts_overlays.
func ApplyOverlays(ctx context.Context, cfg *config.WmtsConfig, f *fetch.Fetcher, originX, originZ float64, bbox geo.WorldBoundingBox, bounds mosaic.Bounds, builder *overlay.Builder, order uint32) error {
	if cfg == nil || !cfg.Enabled || len(cfg.Colors) == 0 {
		return nil
	}

	caps, err := FetchCapabilities(ctx, f, cfg.CapabilitiesURL, cfg.Layer, cfg.TileMatrixSet)
	if err != nil {
		return ferr.New(ferr.OverlayFetch, cfg.Layer, err)
	}

	styleID := cfg.StyleID
	if styleID == "" {
		styleID = caps.DefaultStyle
	}
	if styleID == "" {
		return ferr.New(ferr.Config, cfg.Layer, fmt.Errorf("layer %q does not provide a default style; set wmts.style_id", cfg.Layer))
	}
	if cfg.StyleID != "" && !containsString(caps.Styles, cfg.StyleID) {
		return ferr.New(ferr.Config, cfg.Layer, fmt.Errorf("layer %q does not expose style %q", cfg.Layer, cfg.StyleID))
	}
	if !containsFormat(caps.Formats, cfg.Format) {
		return ferr.New(ferr.Config, cfg.Layer, fmt.Errorf("layer %q does not list format %q", cfg.Layer, cfg.Format))
	}

	matrix, ok := caps.Matrices[cfg.TileMatrix]
	if !ok {
		return ferr.New(ferr.Config, cfg.Layer, fmt.Errorf("tile matrix %q not found in set %q", cfg.TileMatrix, cfg.TileMatrixSet))
	}
	var limits *TileMatrixLimits
	if l, ok := caps.Limits[cfg.TileMatrix]; ok {
		limits = &l
	}

	coverage := ComputeCoverage(bbox, matrix, limits)
	if len(coverage.Tiles) == 0 {
		logx.Warnf("no WMTS tiles overlap the requested area")
		return nil
	}
	if uint32(len(coverage.Tiles)) > cfg.MaxTiles {
		return ferr.New(ferr.Config, cfg.Layer, fmt.Errorf("WMTS would require %d tiles at matrix %s, exceeding wmts.max_tiles (%d)", len(coverage.Tiles), cfg.TileMatrix, cfg.MaxTiles))
	}

	extension, err := ExtensionForFormat(cfg.Format)
	if err != nil {
		return ferr.New(ferr.Config, cfg.Layer, err)
	}

	logx.Infof("prefetching %d WMTS tiles (matrix %s)", len(coverage.Tiles), cfg.TileMatrix)
	images := make(map[TileCoordinate]image.Image, len(coverage.Tiles))
	for _, t := range coverage.Tiles {
		tileURL := buildTileURL(caps.GetTileURL, cfg.Layer, styleID, cfg.TileMatrixSet, cfg.TileMatrix, t.Row, t.Col, cfg.Format, extension)
		body, err := f.Get(ctx, tileURL)
		if err != nil {
			return ferr.New(ferr.OverlayFetch, cfg.Layer, fmt.Errorf("fetching WMTS tile row %d col %d: %w", t.Row, t.Col, err))
		}
		img, _, err := image.Decode(bytes.NewReader(body))
		if err != nil {
			return ferr.New(ferr.OverlayFetch, cfg.Layer, fmt.Errorf("decoding WMTS tile row %d col %d: %w", t.Row, t.Col, err))
		}
		images[t] = img
	}

	painted := paintColumns(bounds, originX, originZ, matrix, coverage, images, cfg.Colors, order, builder)
	logx.Infof("applied WMTS overlays to %d column(s)", painted)
	return nil
}

// paintColumns walks every world column in bounds, samples the WMTS
// tile mosaic at that column, and emits one PaintDirective per (chunk,
// matched color rule) grouping so a whole raster region reuses a
// single directive instead of one per pixel.
func paintColumns(bounds mosaic.Bounds, originX, originZ float64, matrix TileMatrix, coverage Coverage, images map[TileCoordinate]image.Image, rules []config.WmtsColorRule, order uint32, builder *overlay.Builder) int {
	type chunkRuleKey struct {
		chunk overlay.ChunkKey
		rule  int
	}
	masks := make(map[chunkRuleKey]*style.ColumnMask)
	painted := 0

	for wz := bounds.MinZ; wz < bounds.MaxZ; wz++ {
		for wx := bounds.MinX; wx < bounds.MaxX; wx++ {
			lambertX := originX + float64(wx)
			lambertY := originZ - float64(wz)
			sample, ok := LocatePixel(lambertX, lambertY, matrix)
			if !ok || !coverage.Contains(sample.Col, sample.Row) {
				continue
			}
			img, ok := images[TileCoordinate{Row: sample.Row, Col: sample.Col}]
			if !ok {
				continue
			}
			imgBounds := img.Bounds()
			if sample.PixelX >= imgBounds.Dx() || sample.PixelY >= imgBounds.Dy() {
				continue
			}
			r, g, b, a := img.At(imgBounds.Min.X+sample.PixelX, imgBounds.Min.Y+sample.PixelY).RGBA()
			pr, pg, pb, pa := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)

			for i, rule := range rules {
				if !rule.Matches(pr, pg, pb, pa) {
					continue
				}
				cx, cz := coords.WorldToChunk(wx, wz)
				lx, lz := coords.LocalInChunk(wx, wz)
				key := chunkRuleKey{chunk: overlay.ChunkKey{X: int32(cx), Z: int32(cz)}, rule: i}
				mask, exists := masks[key]
				if !exists {
					mask = &style.ColumnMask{}
					masks[key] = mask
				}
				mask[lz*coords.SectionSide+lx] = true
				painted++
				break
			}
		}
	}

	for key, mask := range masks {
		rule := rules[key.rule]
		patch := style.StylePatch{
			Biome:           rule.Style.Biome,
			SurfaceBlock:    rule.Style.SurfaceBlock,
			SubsurfaceBlock: rule.Style.SubsurfaceBlock,
			TopThickness:    rule.Style.TopThickness,
		}
		builder.Add(key.chunk.X, key.chunk.Z, style.PaintDirective{
			LayerIndex:     rule.LayerIndex,
			InsertionOrder: order + rule.InsertionOrder,
			Kind:           style.OverlayWMTS,
			Patch:          patch,
			Mask:           *mask,
		})
	}
	return painted
}

func buildTileURL(base, layer, styleID, matrixSet, matrix string, row, col uint32, format, extension string) string {
	_ = extension
	values := url.Values{}
	values.Set("SERVICE", "WMTS")
	values.Set("REQUEST", "GetTile")
	values.Set("VERSION", requestVersion)
	values.Set("LAYER", layer)
	values.Set("STYLE", styleID)
	values.Set("FORMAT", format)
	values.Set("TileMatrixSet", matrixSet)
	values.Set("TileMatrix", matrix)
	values.Set("TileRow", fmt.Sprint(row))
	values.Set("TileCol", fmt.Sprint(col))

	separator := "?"
	if strings.ContainsRune(base, '?') {
		separator = "&"
	}
	return base + separator + values.Encode()
}

func containsString(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

func containsFormat(list []string, target string) bool {
	for _, v := range list {
		if equalFold(v, target) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
