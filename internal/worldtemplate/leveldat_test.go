package worldtemplate

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/francegen/francegen/internal/nbt"
)

func TestWriteProducesGzippedNbtWithSpawn(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, SpawnSettings{SpawnX: 12, SpawnY: 70, SpawnZ: -5, LevelName: "myworld", DataVersion: 3955})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "level.dat" {
		t.Fatalf("unexpected file name: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer gz.Close()

	root, err := nbt.NewDecoder(gz).Decode()
	if err != nil {
		t.Fatal(err)
	}
	dataVal, ok := root.Get("Data")
	if !ok {
		t.Fatal("expected a Data compound")
	}
	data := dataVal.(*nbt.Compound)

	name, _ := data.Get("LevelName")
	if name != "myworld" {
		t.Fatalf("unexpected LevelName: %v", name)
	}
	spawnX, _ := data.Get("SpawnX")
	if spawnX != int32(12) {
		t.Fatalf("unexpected SpawnX: %v", spawnX)
	}
}
