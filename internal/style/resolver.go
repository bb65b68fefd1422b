package style

import (
	"sort"

	"github.com/francegen/francegen/internal/block"
)

// Resolve applies the full style resolver algorithm (spec.md §4.3) for
// one column: defaults, Pass A (biome_layers), Pass B
// (top_block_layers), Pass C (sorted overlay directives), then the
// cliff override. cliffBlock is the block belonging to whichever
// CliffSettings (global or biome-layer override) ClassifyCliff was
// actually run with — see StyleProfile.CliffSettingsFor — so the block
// painted here always matches the settings that decided cliffActive.
func Resolve(profile *StyleProfile, elevationM float64, cliffActive bool, cliffBlock block.ID, directives []PaintDirective, colIndex int) ColumnStyle {
	cs := profile.Defaults()

	for _, layer := range profile.BiomeLayers {
		if layer.Range.Contains(elevationM) {
			cs.Biome = layer.Biome
			break
		}
	}

	for _, layer := range profile.TopBlockLayers {
		if layer.Range.Contains(elevationM) {
			cs.TopBlock = layer.TopBlock
			break
		}
	}

	applicable := applicableDirectives(directives, colIndex)
	sortDirectives(applicable)
	for _, d := range applicable {
		applyPatch(&cs, d.Patch)
	}

	if cliffActive {
		cs.TopBlock = cliffBlock
	}

	return cs
}

func applicableDirectives(directives []PaintDirective, colIndex int) []PaintDirective {
	out := make([]PaintDirective, 0, len(directives))
	for _, d := range directives {
		if d.Applies(colIndex) {
			out = append(out, d)
		}
	}
	return out
}

// sortDirectives orders Pass C application so that the lowest
// layer_index is applied last (wins on top): descending layer_index,
// then OSM before WMTS, then ascending insertion_order (spec.md §4.3
// step 4, §5 ordering guarantee).
func sortDirectives(directives []PaintDirective) {
	sort.SliceStable(directives, func(i, j int) bool {
		a, b := directives[i], directives[j]
		if a.LayerIndex != b.LayerIndex {
			return a.LayerIndex > b.LayerIndex // highest first -> lowest applied last
		}
		if a.Kind != b.Kind {
			return a.Kind == OverlayOSM // OSM before WMTS on a tie
		}
		return a.InsertionOrder < b.InsertionOrder
	})
}

func applyPatch(cs *ColumnStyle, patch StylePatch) {
	if patch.SurfaceBlock != nil {
		cs.TopBlock = *patch.SurfaceBlock
	}
	if patch.SubsurfaceBlock != nil {
		cs.SubsurfaceBlock = *patch.SubsurfaceBlock
	}
	if patch.TopThickness != nil {
		cs.TopThickness = *patch.TopThickness
	}
	if patch.Biome != nil {
		cs.Biome = *patch.Biome
	}
	if patch.Extrusion != nil {
		cs.Extrusion = patch.Extrusion
	}
}
