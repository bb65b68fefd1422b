package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := Document{OriginModelX: 1000, OriginModelZ: 2000, MinX: 0, MaxX: 16, MinZ: 0, MaxZ: 16, MinHeight: 10, MaxHeight: 120}

	path, err := Write(dir, doc)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != FileName {
		t.Fatalf("unexpected metadata file name: %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatal("expected a trailing newline")
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPathForAcceptsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom_meta.json")
	if got := PathFor(explicit); got != explicit {
		t.Fatalf("expected explicit path passthrough, got %s", got)
	}
}
