package overlay

import (
	"testing"

	"github.com/francegen/francegen/internal/style"
)

func TestBuilderGroupsDirectivesByChunk(t *testing.T) {
	b := NewBuilder()
	b.Add(0, 0, style.PaintDirective{LayerIndex: 1})
	b.Add(0, 0, style.PaintDirective{LayerIndex: 2})
	b.Add(1, 0, style.PaintDirective{LayerIndex: 3})

	idx := b.Build()
	if len(idx.DirectivesFor(0, 0)) != 2 {
		t.Fatalf("expected 2 directives for chunk (0,0), got %d", len(idx.DirectivesFor(0, 0)))
	}
	if len(idx.DirectivesFor(1, 0)) != 1 {
		t.Fatalf("expected 1 directive for chunk (1,0), got %d", len(idx.DirectivesFor(1, 0)))
	}
	if len(idx.DirectivesFor(5, 5)) != 0 {
		t.Fatal("expected no directives for an untouched chunk")
	}
}

func TestEmptyIndexReportsEmpty(t *testing.T) {
	idx := NewBuilder().Build()
	if !idx.Empty() {
		t.Fatal("expected a freshly built index with no directives to be empty")
	}
	var nilIdx *Index
	if !nilIdx.Empty() {
		t.Fatal("expected a nil index to report empty")
	}
	if nilIdx.DirectivesFor(0, 0) != nil {
		t.Fatal("expected a nil index to return nil directives")
	}
}
