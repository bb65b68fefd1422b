// Package worldtemplate writes level.dat, the minimal Anvil world
// descriptor a Java Edition client needs to open a generated world
// (spec.md §6 "world-dir outputs"). Grounded in spirit on
// original_source/src/world_template.rs's SpawnSettings/LevelData, but
// re-expressed over our own internal/nbt encoder rather than fastnbt,
// since the original copied and edited a prebuilt template file and
// this package builds the compound directly instead.
package worldtemplate

import (
	"compress/gzip"
	"os"
	"path/filepath"

	"github.com/francegen/francegen/internal/ferr"
	"github.com/francegen/francegen/internal/nbt"
)

// SpawnSettings positions the world's default spawn point (spec.md §6
// "SpawnX/Y/Z at (0, surface_at_origin+1, 0)").
type SpawnSettings struct {
	SpawnX, SpawnY, SpawnZ int32
	LevelName              string
	DataVersion            int32
}

// Write generates level.dat inside outputDir, gzip-compressed as Anvil
// clients expect.
func Write(outputDir string, spawn SpawnSettings) (string, error) {
	path := filepath.Join(outputDir, "level.dat")

	data := nbt.NewCompound().
		Put("LevelName", spawn.LevelName).
		Put("generatorName", "flat").
		Put("GameType", int32(1)).
		Put("Difficulty", int8(2)).
		Put("hardcore", int8(0)).
		Put("allowCommands", int8(1)).
		Put("DataVersion", spawn.DataVersion).
		Put("SpawnX", spawn.SpawnX).
		Put("SpawnY", spawn.SpawnY).
		Put("SpawnZ", spawn.SpawnZ).
		Put("Time", int64(0)).
		Put("DayTime", int64(0)).
		Put("version", nbt.NewCompound().
			Put("Id", int32(3955)).
			Put("Name", "1.21.10").
			Put("Snapshot", int8(0))).
		Put("WasModded", int8(0)).
		Put("initialized", int8(1))

	root := nbt.NewCompound().Put("Data", data)

	file, err := os.Create(path)
	if err != nil {
		return "", ferr.New(ferr.IO, path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if err := nbt.NewEncoder(gz).Encode(root); err != nil {
		return "", ferr.New(ferr.IO, path, err)
	}
	if err := gz.Close(); err != nil {
		return "", ferr.New(ferr.IO, path, err)
	}
	return path, nil
}
