// Package osm fetches OpenStreetMap features from an Overpass API
// endpoint and rasterizes them into style.PaintDirectives, one per
// element per touched chunk. Grounded on
// original_source/src/osm.rs's apply_osm_overlays/rasterize_layer.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/francegen/francegen/internal/config"
	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/fetch"
	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/geo"
	"github.com/francegen/francegen/internal/logx"
	"github.com/francegen/francegen/internal/overlay"
)

// overpassTimeoutSeconds is the [timeout:N] value sent inside the
// Overpass QL query itself (server-side execution budget), distinct
// from the fetcher's own HTTP timeout.
const overpassTimeoutSeconds = 90

// overpassResponse is the subset of Overpass JSON this package reads.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Geometry []overpassPoint  `json:"geometry"`
	Tags     map[string]string `json:"tags"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ApplyOverlays fetches every enabled OSM layer and paints its features
// into builder, keyed by chunk (spec.md §4.5 OSM overlay path).
// orderOffset is added to each layer's position so OSM directives sort
// after any WMTS directives contributed earlier in the pipeline, or
// vice versa, per the caller's chosen precedence.
func ApplyOverlays(ctx context.Context, cfg *config.OsmConfig, f *fetch.Fetcher, originX, originZ float64, bbox geo.WorldBoundingBox, builder *overlay.Builder, orderOffset uint32) error {
	if cfg == nil || !cfg.Enabled || len(cfg.Layers) == 0 {
		return nil
	}

	latlon := bbox.ToLatLon()
	bboxParam := latlon.ToOverpassBBox()
	logx.Infof("OSM bbox (lat/lon): south %.6f, west %.6f, north %.6f, east %.6f", latlon.South, latlon.West, latlon.North, latlon.East)

	for i, layer := range cfg.Layers {
		query := buildQuery(layer.Query, bboxParam)
		logx.Infof("fetching OSM layer %q", layer.Name)
		body, err := f.Post(ctx, cfg.OverpassURL, "application/x-www-form-urlencoded", []byte("data="+query))
		if err != nil {
			return ferr.New(ferr.OverlayFetch, layer.Name, err)
		}

		var parsed overpassResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return ferr.New(ferr.OverlayFetch, layer.Name, fmt.Errorf("parsing Overpass JSON for %q: %w", layer.Name, err))
		}

		order := orderOffset + uint32(i)
		painted := rasterizeLayer(layer, parsed.Elements, originX, originZ, builder, order)
		logx.Infof("applied %d overlay column(s) for layer %q", painted, layer.Name)
	}
	return nil
}

// buildQuery substitutes {{bbox}} into the layer's Overpass QL body and
// wraps it with the standard settings header and geometry output
// directive (spec.md §4.5 "OSM query template").
func buildQuery(rawQuery, bboxParam string) string {
	body := rawQuery
	if strings.Contains(body, "{{bbox}}") {
		body = strings.ReplaceAll(body, "{{bbox}}", bboxParam)
	}
	body = strings.TrimSpace(body)
	if !strings.HasSuffix(body, ";") {
		body += ";"
	}
	return fmt.Sprintf("[out:json][timeout:%d];%sout geom;", overpassTimeoutSeconds, body)
}

func rasterizeLayer(layer config.OsmLayer, elements []overpassElement, originX, originZ float64, builder *overlay.Builder, order uint32) int {
	painted := 0
	for _, element := range elements {
		if len(element.Geometry) < 2 {
			continue
		}
		path := make([][2]int, 0, len(element.Geometry))
		for _, p := range element.Geometry {
			x, z := geo.LatLonToLambert93(p.Lat, p.Lon)
			wx, wz := coords.ModelToWorld(x, z, originX, originZ)
			path = append(path, [2]int{wx, wz})
		}

		var tags map[string]string
		if len(element.Tags) > 0 {
			tags = element.Tags
		}
		patch := buildPatch(layer.Style, tags)

		switch layer.Geometry {
		case config.GeometryLine:
			width := resolveLineWidth(layer.Width, tags)
			painted += rasterizeLine(path, width, layer.LayerIndex, order, patch, builder)
		case config.GeometryPolygon:
			painted += rasterizePolygon(path, layer.LayerIndex, order, patch, builder)
		}
	}
	return painted
}

func resolveLineWidth(source config.AttributeSource, tags map[string]string) float64 {
	width := source.Resolve(tags)
	if width < 0.5 {
		return 0.5
	}
	return width
}
