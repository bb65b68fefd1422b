// Command francegen converts GeoTIFF DEM heightmaps into a Minecraft
// Java Edition Anvil world. Built with github.com/urfave/cli/v2, the
// teacher's own CLI dependency, generalizing its single-action App
// (astei-anvil2slime/main.go) into a command tree: a default "generate"
// action plus locate/bounds/info auxiliaries, ported from
// original_source/src/cli.rs's Command enum and argument parsing.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/logx"
	"github.com/francegen/francegen/internal/mosaic"
	"github.com/francegen/francegen/internal/pipeline"
)

func main() {
	app := &cli.App{
		Name:                 "francegen",
		Usage:                "converts GeoTIFF DEM heightmaps into a Minecraft Anvil world",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "terrain config JSON file"},
			&cli.StringFlag{Name: "cache-dir", Usage: "directory for cached Overpass/WMTS responses"},
			&cli.BoolFlag{Name: "meta-only", Usage: "write francegen_meta.json and skip region generation"},
			&cli.StringFlag{Name: "bounds", Usage: "crop to world-block bounds minX,minZ,maxX,maxZ"},
			&cli.IntFlag{Name: "threads", Usage: "worker count (reserved; generation is currently single-threaded per run)"},
		},
		Action: runGenerate,
		Commands: []*cli.Command{
			{
				Name:      "locate",
				Usage:     "resolve a real-world point to Minecraft block/chunk coordinates",
				ArgsUsage: "<world-dir> <real-x> <real-z> [<real-height>]",
				Action:    runLocate,
			},
			{
				Name:      "bounds",
				Usage:     "print the union model-space extent of every .tif file in a directory",
				ArgsUsage: "<tif-folder>",
				Action:    runBounds,
			},
			{
				Name:      "info",
				Usage:     "print a generated world's metadata summary",
				ArgsUsage: "<world-dir>",
				Action:    runInfo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logx.Errorf("%v", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var ferrErr *ferr.Error
	if errors.As(err, &ferrErr) {
		return ferrErr.ExitCode()
	}
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}

func runGenerate(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("usage: francegen [flags] <tif-folder> <output-world>", 1)
	}

	var bounds *mosaic.Bounds
	if raw := c.String("bounds"); raw != "" {
		b, err := parseBounds(raw)
		if err != nil {
			return cli.Exit(err, 1)
		}
		bounds = b
	}

	opts := pipeline.Options{
		InputDir:   c.Args().Get(0),
		OutputDir:  c.Args().Get(1),
		ConfigPath: c.String("config"),
		CacheDir:   c.String("cache-dir"),
		Bounds:     bounds,
		MetaOnly:   c.Bool("meta-only"),
	}

	summary, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		return err
	}

	if summary.MetaOnly {
		logx.Infof("Saved metadata only: %s", summary.MetadataPath)
		logx.Info("  Skipped region generation (--meta-only).")
		return nil
	}

	logx.Info("")
	logx.Info("World generation complete")
	logx.Infof("  Input directory:  %s", opts.InputDir)
	logx.Infof("  Output directory: %s", opts.OutputDir)
	logx.Infof("  Tiles %8d    Samples %10d", summary.TifFiles, summary.Samples)
	logx.Infof("  Columns %6d    Chunks queued %6d", summary.Columns, summary.ChunksQueued)
	logx.Infof("  Region files %2d    Chunks written %6d", summary.RegionFiles, summary.ChunksWritten)
	logx.Infof("Saved metadata: %s", summary.MetadataPath)
	return nil
}

func runLocate(c *cli.Context) error {
	if c.NArg() < 3 {
		return cli.Exit("usage: francegen locate <world-dir> <real-x> <real-z> [<real-height>]", 1)
	}
	world := c.Args().Get(0)
	realX, err := strconv.ParseFloat(c.Args().Get(1), 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid real-x %q", c.Args().Get(1)), 1)
	}
	realZ, err := strconv.ParseFloat(c.Args().Get(2), 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid real-z %q", c.Args().Get(2)), 1)
	}
	var height *float64
	if c.NArg() > 3 {
		h, err := strconv.ParseFloat(c.Args().Get(3), 64)
		if err != nil {
			return cli.Exit(fmt.Sprintf("invalid real-height %q", c.Args().Get(3)), 1)
		}
		height = &h
	}

	result, err := pipeline.Locate(world, realX, realZ, height)
	if err != nil {
		return err
	}

	logx.Infof("Located point (%.3f, %.3f)", realX, realZ)
	logx.Infof("  Minecraft block: X=%d, Z=%d", result.X, result.Z)
	logx.Infof("  Chunk: (%d, %d)  block-in-chunk: (%d, %d)", result.ChunkX, result.ChunkZ, result.BlockX, result.BlockZ)
	if result.Y != nil {
		logx.Infof("  Height: real %.2f m -> Minecraft Y %d", *height, *result.Y)
	} else {
		logx.Info("  Provide a real-world elevation to also convert Y (append a height value).")
	}
	logx.Infof("  World bounds: X [%d..%d], Z [%d..%d]", result.Doc.MinX, result.Doc.MaxX, result.Doc.MinZ, result.Doc.MaxZ)
	return nil
}

func runBounds(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: francegen bounds <tif-folder>", 1)
	}
	dir := c.Args().Get(0)
	result, err := pipeline.Bounds(dir)
	if err != nil {
		return cli.Exit(err, 1)
	}

	logx.Infof("Found %d GeoTIFF(s) in %s", result.TifCount, dir)
	logx.Infof("  X bounds: [%.3f .. %.3f] (width %.3f m)", result.MinX, result.MaxX, result.Width())
	logx.Infof("  Z bounds: [%.3f .. %.3f] (depth %.3f m)", result.MinZ, result.MaxZ, result.Depth())
	logx.Infof("  Suggested flag: --bounds %s", result.SuggestedFlag())
	return nil
}

func runInfo(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: francegen info <world-dir>", 1)
	}
	world := c.Args().Get(0)
	result, err := pipeline.Info(world)
	if err != nil {
		return err
	}

	logx.Infof("World metadata: %s", result.Path)
	logx.Infof("  Heights: min %.2f m, max %.2f m", result.Doc.MinHeight, result.Doc.MaxHeight)
	logx.Infof("  World bounds X:[%d..%d], Z:[%d..%d]", result.Doc.MinX, result.Doc.MaxX, result.Doc.MinZ, result.Doc.MaxZ)
	logx.Infof("  Origin (model): (%.3f, %.3f) -> MC (0, 0)", result.Doc.OriginModelX, result.Doc.OriginModelZ)
	logx.Infof("  Center: (%.1f, %.1f)", result.CenterX, result.CenterZ)
	return nil
}

func parseBounds(raw string) (*mosaic.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("--bounds expects minX,minZ,maxX,maxZ, got %q", raw)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--bounds: invalid number %q", p)
		}
		vals[i] = int(v)
	}
	return &mosaic.Bounds{MinX: vals[0], MinZ: vals[1], MaxX: vals[2], MaxZ: vals[3]}, nil
}
