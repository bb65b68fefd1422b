// Package pipeline wires every stage of a world generation run together:
// tile ingestion, overlay application, per-chunk resolution, and region/
// metadata/level.dat output. Grounded on original_source/src/generate.rs's
// run_generate, which performs the same sequence against the Rust port's
// WorldBuilder/ChunkHeights types.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/francegen/francegen/internal/chunk"
	"github.com/francegen/francegen/internal/config"
	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/fetch"
	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/geo"
	"github.com/francegen/francegen/internal/geotiff"
	"github.com/francegen/francegen/internal/logx"
	"github.com/francegen/francegen/internal/metadata"
	"github.com/francegen/francegen/internal/mosaic"
	"github.com/francegen/francegen/internal/nbt"
	"github.com/francegen/francegen/internal/osm"
	"github.com/francegen/francegen/internal/overlay"
	"github.com/francegen/francegen/internal/region"
	"github.com/francegen/francegen/internal/style"
	"github.com/francegen/francegen/internal/wmts"
	"github.com/francegen/francegen/internal/worldtemplate"
)

// defaultSpawnY mirrors generate.rs's DEFAULT_SPAWN_Y = (MAX_WORLD_Y +
// BEDROCK_Y) / 2, used when the spawn column itself has no chunk data.
var defaultSpawnY = (coords.MaxWorldY + coords.MinWorldY) / 2

// Options configures one generation run (spec.md §6 CLI surface,
// grounded on original_source/src/cli.rs's GenerateConfig).
type Options struct {
	InputDir     string
	OutputDir    string
	ConfigPath   string
	CacheDir     string
	Bounds       *mosaic.Bounds
	MetaOnly     bool
}

// Summary reports what a run produced, for the CLI's closing printout
// (generate.rs's Summary/print_summary).
type Summary struct {
	TifFiles      int
	Samples       int
	Columns       int
	ChunksQueued  int
	RegionFiles   int
	ChunksWritten int
	MetadataPath  string
	MetaOnly      bool
}

// Run executes one full generate pass.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, ferr.New(ferr.IO, opts.OutputDir, err)
	}

	tifPaths, err := collectTifs(opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(tifPaths) == 0 {
		return nil, ferr.New(ferr.Config, opts.InputDir, fmt.Errorf("no .tif files found"))
	}

	tiles := make([]geotiff.Tile, 0, len(tifPaths))
	for _, path := range tifPaths {
		logx.Infof("Ingesting %s", filepath.Base(path))
		tile, err := geotiff.Load(path)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	logx.Infof("Ingested %d GeoTIFF(s)", len(tifPaths))

	grid, err := mosaic.Build(tiles, opts.Bounds)
	if err != nil {
		return nil, err
	}
	sampleCount, columnCount := gridStats(grid)
	logx.Infof("World bounds X:[%d..%d) Z:[%d..%d), heights %.2fm..%.2fm",
		grid.MinX, grid.MaxX, grid.MinZ, grid.MaxZ, grid.MinHeight, grid.MaxHeight)

	doc := metadataDocument(grid)

	if opts.MetaOnly {
		path, err := metadata.Write(opts.OutputDir, doc)
		if err != nil {
			return nil, err
		}
		return &Summary{TifFiles: len(tifPaths), Samples: sampleCount, Columns: columnCount,
			MetadataPath: path, MetaOnly: true}, nil
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	chunkCoords := chunksToGenerate(grid, cfg.Style.EmptyChunkRadius)
	logx.Infof("Queued %d chunk(s) covering %d column(s)", len(chunkCoords), columnCount)

	builder := overlay.NewBuilder()
	osmLayerCount := uint32(0)
	if cfg.Osm != nil {
		osmLayerCount = uint32(len(cfg.Osm.Layers))
	}

	if cfg.Osm != nil && cfg.Osm.Enabled {
		f := fetch.New(opts.CacheDir, "overpass")
		bbox := geo.BoundingBoxFromWorld(grid.MinX, grid.MaxX, grid.MinZ, grid.MaxZ,
			grid.OriginModelX, grid.OriginModelZ, cfg.Osm.BboxMarginM)
		if err := osm.ApplyOverlays(ctx, cfg.Osm, f, grid.OriginModelX, grid.OriginModelZ, bbox, builder, 0); err != nil {
			return nil, err
		}
	}

	if cfg.Wmts != nil && cfg.Wmts.Enabled {
		if opts.CacheDir != "" {
			if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
				return nil, ferr.New(ferr.IO, opts.CacheDir, err)
			}
		}
		f := fetch.New(opts.CacheDir, "tiles")
		bbox := geo.BoundingBoxFromWorld(grid.MinX, grid.MaxX, grid.MinZ, grid.MaxZ,
			grid.OriginModelX, grid.OriginModelZ, cfg.Wmts.BboxMarginM)
		bounds := mosaic.Bounds{MinX: grid.MinX, MinZ: grid.MinZ, MaxX: grid.MaxX, MaxZ: grid.MaxZ}
		if err := wmts.ApplyOverlays(ctx, cfg.Wmts, f, grid.OriginModelX, grid.OriginModelZ, bbox, bounds, builder, osmLayerCount); err != nil {
			return nil, err
		}
	}

	index := builder.Build()

	byRegion := make(map[[2]int][]region.Chunk)
	for _, cc := range chunkCoords {
		columns := resolveColumns(grid, cfg.Style, index, cc.cx, cc.cz)
		root, anyBlocks := chunk.Build(cc.cx, cc.cz, columns, chunk.Options{
			DataVersion:      cfg.DataVersion,
			GenerateFeatures: cfg.Style.GenerateFeatures,
			DefaultBiome:     cfg.Style.BaseBiome,
		})
		if !anyBlocks {
			// Still written: an air-only chunk marked minecraft:full so
			// vanilla world generation never runs at this coordinate
			// (spec.md §4.7 empty-chunk padding).
			root.Put("Status", "minecraft:full")
		}
		nbtBytes, err := encodeChunkNBT(root)
		if err != nil {
			return nil, err
		}
		rx, rz := coords.ChunkToRegion(cc.cx, cc.cz)
		lx, lz := coords.LocalInRegion(cc.cx, cc.cz)
		key := [2]int{rx, rz}
		byRegion[key] = append(byRegion[key], region.Chunk{LocalX: lx, LocalZ: lz, NBT: nbtBytes})
	}

	regionKeys := make([][2]int, 0, len(byRegion))
	for key := range byRegion {
		regionKeys = append(regionKeys, key)
	}
	sort.Slice(regionKeys, func(i, j int) bool {
		if regionKeys[i][0] != regionKeys[j][0] {
			return regionKeys[i][0] < regionKeys[j][0]
		}
		return regionKeys[i][1] < regionKeys[j][1]
	})

	chunksWritten := 0
	for _, key := range regionKeys {
		chunks := byRegion[key]
		if err := region.Write(opts.OutputDir, key[0], key[1], chunks); err != nil {
			return nil, err
		}
		chunksWritten += len(chunks)
	}

	metaPath, err := metadata.Write(opts.OutputDir, doc)
	if err != nil {
		return nil, err
	}

	spawnX, spawnZ := int32(0), int32(0)
	spawnY := int32(defaultSpawnY)
	if elev := grid.At(int(spawnX), int(spawnZ)); !math.IsNaN(float64(elev)) {
		spawnY = int32(coords.ElevationToY(float64(elev))) + 1
	}
	worldName := filepath.Base(strings.TrimRight(opts.OutputDir, string(filepath.Separator)))
	if worldName == "" || worldName == "." {
		worldName = "francegen_world"
	}
	if _, err := worldtemplate.Write(opts.OutputDir, worldtemplate.SpawnSettings{
		SpawnX: spawnX, SpawnY: spawnY, SpawnZ: spawnZ, LevelName: worldName, DataVersion: cfg.DataVersion,
	}); err != nil {
		return nil, err
	}

	return &Summary{
		TifFiles: len(tifPaths), Samples: sampleCount, Columns: columnCount,
		ChunksQueued: len(chunkCoords), RegionFiles: len(regionKeys), ChunksWritten: chunksWritten,
		MetadataPath: metaPath,
	}, nil
}

func collectTifs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferr.New(ferr.IO, dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".tif" || ext == ".tiff" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func gridStats(grid *mosaic.Grid) (samples, columns int) {
	for z := grid.MinZ; z < grid.MaxZ; z++ {
		for x := grid.MinX; x < grid.MaxX; x++ {
			if !math.IsNaN(float64(grid.At(x, z))) {
				samples++
			}
		}
	}
	columns = samples
	return
}

func metadataDocument(grid *mosaic.Grid) metadata.Document {
	return metadata.Document{
		OriginModelX: grid.OriginModelX,
		OriginModelZ: grid.OriginModelZ,
		MinX:         grid.MinX,
		MaxX:         grid.MaxX,
		MinZ:         grid.MinZ,
		MaxZ:         grid.MaxZ,
		MinHeight:    grid.MinHeight,
		MaxHeight:    grid.MaxHeight,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	return config.Load(path)
}

func defaultConfig() *config.Config {
	return &config.Config{
		Style: &style.StyleProfile{
			TopLayerBlock:     "minecraft:grass_block",
			TopLayerThickness: 1,
			BottomLayerBlock:  "minecraft:stone",
			BaseBiome:         "minecraft:plains",
			EmptyChunkRadius:  32,
		},
		DataVersion: config.DefaultDataVersion,
	}
}

type chunkCoord struct{ cx, cz int }

// chunksToGenerate returns every chunk coordinate the DEM's world bounds
// touch, padded by emptyChunkRadius chunks on every side (spec.md §9
// resolves the radius unit as chunks, not blocks).
func chunksToGenerate(grid *mosaic.Grid, emptyChunkRadius uint32) []chunkCoord {
	pad := int(emptyChunkRadius)
	minCX, minCZ := coords.WorldToChunk(grid.MinX, grid.MinZ)
	maxCX, maxCZ := coords.WorldToChunk(grid.MaxX-1, grid.MaxZ-1)
	minCX, minCZ = minCX-pad, minCZ-pad
	maxCX, maxCZ = maxCX+pad, maxCZ+pad

	out := make([]chunkCoord, 0, (maxCX-minCX+1)*(maxCZ-minCZ+1))
	for cz := minCZ; cz <= maxCZ; cz++ {
		for cx := minCX; cx <= maxCX; cx++ {
			out = append(out, chunkCoord{cx, cz})
		}
	}
	return out
}

func resolveColumns(grid *mosaic.Grid, profile *style.StyleProfile, index *overlay.Index, cx, cz int) [256]chunk.ColumnInput {
	var columns [256]chunk.ColumnInput
	directives := index.DirectivesFor(int32(cx), int32(cz))

	baseX := cx * coords.SectionSide
	baseZ := cz * coords.SectionSide
	for lz := 0; lz < coords.SectionSide; lz++ {
		for lx := 0; lx < coords.SectionSide; lx++ {
			x, z := baseX+lx, baseZ+lz
			elevation := grid.At(x, z)
			idx := lz*coords.SectionSide + lx

			if math.IsNaN(float64(elevation)) {
				columns[idx] = chunk.ColumnInput{HasElevation: false, Biome: profile.BaseBiome}
				continue
			}

			elevationM := float64(elevation)
			cliffActive := false
			cliffSettings := profile.CliffGeneration
			if profile.CliffEnabled {
				cliffSettings = profile.CliffSettingsFor(elevationM)
				cliffActive = style.ClassifyCliff(grid.At, x, z, cliffSettings)
			}
			cs := style.Resolve(profile, elevationM, cliffActive, cliffSettings.Block, directives, idx)
			columns[idx] = chunk.ColumnInput{
				HasElevation:    true,
				SurfaceY:        coords.ElevationToY(elevationM),
				Biome:           cs.Biome,
				TopBlock:        cs.TopBlock,
				TopThickness:    cs.TopThickness,
				SubsurfaceBlock: cs.SubsurfaceBlock,
				Extrusion:       cs.Extrusion,
			}
		}
	}
	return columns
}

func encodeChunkNBT(root *nbt.Compound) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(root); err != nil {
		return nil, ferr.New(ferr.IO, "", err)
	}
	return buf.Bytes(), nil
}
