// Package metadata reads and writes francegen_meta.json, the document
// that maps a generated world's origin and extent back to its source
// CRS (spec.md §4.8 / §3 "MetadataDocument"). Grounded on
// original_source/src/metadata.rs's WorldMetadata/write_metadata/
// load_metadata/metadata_path.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/francegen/francegen/internal/ferr"
)

// FileName is the metadata document's fixed name inside a world directory.
const FileName = "francegen_meta.json"

// Document is the on-disk metadata shape (spec.md §3).
type Document struct {
	OriginModelX float64 `json:"origin_model_x"`
	OriginModelZ float64 `json:"origin_model_z"`
	MinX         int     `json:"min_x"`
	MaxX         int     `json:"max_x"`
	MinZ         int     `json:"min_z"`
	MaxZ         int     `json:"max_z"`
	MinHeight    float64 `json:"min_height"`
	MaxHeight    float64 `json:"max_height"`
}

// PathFor resolves the metadata file path for a world directory (or
// passes through an explicit file path unchanged).
func PathFor(base string) string {
	info, err := os.Stat(base)
	if err == nil && info.IsDir() {
		return filepath.Join(base, FileName)
	}
	return base
}

// Write pretty-prints the document to base's metadata path, with a
// trailing newline (spec.md §4.8).
func Write(base string, doc Document) (string, error) {
	path := PathFor(base)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", ferr.New(ferr.IO, path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", ferr.New(ferr.IO, path, err)
	}
	return path, nil
}

// Load reads and parses the metadata document for a world directory.
func Load(base string) (Document, error) {
	path := PathFor(base)
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, ferr.New(ferr.IO, path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, ferr.New(ferr.IO, path, err)
	}
	return doc, nil
}
