package pipeline

import (
	"github.com/francegen/francegen/internal/coords"
	"github.com/francegen/francegen/internal/metadata"
)

// LocateResult mirrors original_source/src/locate.rs's run_locate
// printout: a real-world point resolved to its Minecraft block, chunk,
// block-in-chunk, and (if a height was given) Y coordinate.
type LocateResult struct {
	Doc              metadata.Document
	X, Z             int
	ChunkX, ChunkZ   int
	BlockX, BlockZ   int
	Y                *int
}

// Locate resolves a real-world (realX, realZ) point against a world
// directory's metadata, optionally converting realHeight to a
// Minecraft Y.
func Locate(worldDir string, realX, realZ float64, realHeight *float64) (LocateResult, error) {
	doc, err := metadata.Load(worldDir)
	if err != nil {
		return LocateResult{}, err
	}

	loc := coords.LocateFromModel(realX, realZ, doc.OriginModelX, doc.OriginModelZ, realHeight)
	blockX, blockZ := coords.LocalInChunk(loc.X, loc.Z)

	return LocateResult{
		Doc: doc, X: loc.X, Z: loc.Z,
		ChunkX: loc.CX, ChunkZ: loc.CZ,
		BlockX: blockX, BlockZ: blockZ,
		Y: loc.Y,
	}, nil
}
