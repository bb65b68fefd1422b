package pipeline

import "github.com/francegen/francegen/internal/metadata"

// InfoResult mirrors original_source/src/info.rs's run_info printout:
// the loaded metadata document plus its derived center point.
type InfoResult struct {
	Path           string
	Doc            metadata.Document
	CenterX        float64
	CenterZ        float64
}

// Info loads a world directory's metadata document and derives its
// center point, for the `francegen info` subcommand.
func Info(worldDir string) (InfoResult, error) {
	doc, err := metadata.Load(worldDir)
	if err != nil {
		return InfoResult{}, err
	}
	return InfoResult{
		Path:    metadata.PathFor(worldDir),
		Doc:     doc,
		CenterX: (float64(doc.MinX) + float64(doc.MaxX)) / 2,
		CenterZ: (float64(doc.MinZ) + float64(doc.MaxZ)) / 2,
	}, nil
}
