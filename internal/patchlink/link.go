// Package patchlink obtains supplemental project data from a secondary
// source and merges it into the upstream records.
//
// The upstream API leaves out part of the project graph: some projects come
// back with placeholder coordinates, no prerequisite lines, or a generic
// kind. The secondary source knows the correct values. A Link asks it for
// the overrides of one dataset; Apply merges them.
//
// Every Link settles exactly once per Request and honours the context
// deadline, so a silent source cannot stall a fetch.
package patchlink

import (
	"context"
	"fmt"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Link requests patch records for a dataset.
type Link interface {
	Request(ctx context.Context, records []graph.RawProjectRecord, key graph.RequestKey) (map[int]graph.PatchRecord, error)
}

// SourceError is the failure reported by the secondary source itself.
type SourceError struct {
	Reason string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("patch source failed: %s", e.Reason)
}

// NoopLink is used when no secondary source is configured.
type NoopLink struct{}

// Request always returns an empty mapping.
func (NoopLink) Request(context.Context, []graph.RawProjectRecord, graph.RequestKey) (map[int]graph.PatchRecord, error) {
	return map[int]graph.PatchRecord{}, nil
}

// Apply returns a copy of records with the patches merged in. Coordinates
// and lines are replaced only when the patch carries them; a patch kind is
// kept only if it belongs to the inner vocabulary.
func Apply(records []graph.RawProjectRecord, patches map[int]graph.PatchRecord) []graph.RawProjectRecord {
	out := make([]graph.RawProjectRecord, len(records))
	copy(out, records)
	if len(patches) == 0 {
		return out
	}

	for i := range out {
		p, ok := patches[out[i].ID]
		if !ok {
			continue
		}
		if p.X != nil {
			out[i].X = *p.X
		}
		if p.Y != nil {
			out[i].Y = *p.Y
		}
		if p.By != nil {
			out[i].By = p.By
		}
		if kind, ok := graph.KindFromInner(p.Kind); ok {
			out[i].PatchedKind = kind
		}
	}
	return out
}
