package patchlink

import (
	"context"
	"maps"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// StaticLink serves patches that are known ahead of time, grouped by cursus
// id and then by project id.
type StaticLink struct {
	byCursus map[int]map[int]graph.PatchRecord
}

// NewStaticLink creates a link over a fixed patch table.
func NewStaticLink(byCursus map[int]map[int]graph.PatchRecord) *StaticLink {
	if byCursus == nil {
		byCursus = map[int]map[int]graph.PatchRecord{}
	}
	return &StaticLink{byCursus: byCursus}
}

// Request returns a copy of the patches for the key's cursus.
func (l *StaticLink) Request(ctx context.Context, _ []graph.RawProjectRecord, key graph.RequestKey) (map[int]graph.PatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}
	out := make(map[int]graph.PatchRecord, len(l.byCursus[key.CursusID]))
	maps.Copy(out, l.byCursus[key.CursusID])
	return out, nil
}
