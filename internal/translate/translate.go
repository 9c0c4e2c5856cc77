// Package translate maps merged upstream records onto the normalized
// graph.ProjectNode schema. Each record is translated independently: a
// record that cannot be translated is reported in its Result and dropped by
// Translate, while every other record still makes it into the output.
package translate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// projectPath is joined between the canonical origin and a project slug.
const projectPath = "/projects/"

// finalModuleSuffix marks the last module of a module track.
const finalModuleSuffix = "08"

var (
	// ErrMissingName is reported for records without a name.
	ErrMissingName = errors.New("record has no name")
	// ErrMissingEdges is reported for records without an edge list.
	ErrMissingEdges = errors.New("record has no edge list")
	// ErrUndecodable is reported for upstream entries that did not match
	// the record schema.
	ErrUndecodable = errors.New("record could not be decoded")
)

// Result is the outcome of translating one record.
type Result struct {
	Node graph.ProjectNode
	Err  error
}

// OK reports whether the record translated successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// Record translates a single merged record. origin is the canonical origin
// (scheme and host) used to build the project URL.
func Record(rec graph.RawProjectRecord, origin string) Result {
	if rec.DecodeErr != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrUndecodable, rec.DecodeErr)}
	}
	if rec.Name == nil {
		return Result{Err: ErrMissingName}
	}
	if rec.By == nil {
		return Result{Err: ErrMissingEdges}
	}

	lines := make([]graph.Edge, 0, len(rec.By))
	for i, by := range rec.By {
		src, dst, err := by.Endpoints()
		if err != nil {
			return Result{Err: fmt.Errorf("edge %d: %w", i, err)}
		}
		lines = append(lines, graph.Edge{
			Source: graph.Point{X: graph.Transform(src.X), Y: graph.Transform(src.Y)},
			Target: graph.Point{X: graph.Transform(dst.X), Y: graph.Transform(dst.Y)},
		})
	}

	return Result{Node: graph.ProjectNode{
		State:        rec.State,
		FinalMark:    rec.FinalMark,
		Kind:         Classify(*rec.Name, rec.Kind, rec.PatchedKind),
		Name:         *rec.Name,
		X:            graph.Transform(rec.X),
		Y:            graph.Transform(rec.Y),
		Duration:     rec.Duration,
		Requirements: rec.Rules,
		Description:  rec.Description,
		URL:          strings.TrimRight(origin, "/") + projectPath + rec.Slug,
		Lines:        lines,
	}}
}

// Classify decides the normalized kind of a project. A kind supplied by the
// patch source wins; otherwise module names are recognised by name and
// everything else keeps its upstream kind.
func Classify(name, upstreamKind string, patched graph.Kind) graph.Kind {
	if patched != "" {
		return patched
	}
	if strings.Contains(strings.ToLower(name), "module") {
		if strings.HasSuffix(name, finalModuleSuffix) {
			return graph.KindFinalModule
		}
		return graph.KindModule
	}
	return graph.Kind(upstreamKind)
}

// Records translates every record and returns one Result per input, in
// input order.
func Records(records []graph.RawProjectRecord, origin string) []Result {
	results := make([]Result, len(records))
	for i, rec := range records {
		results[i] = Record(rec, origin)
	}
	return results
}

// Translate returns the successfully translated nodes in input order.
// Failed records are logged together with the record and left out.
func Translate(records []graph.RawProjectRecord, origin string, logger *slog.Logger) []graph.ProjectNode {
	nodes := make([]graph.ProjectNode, 0, len(records))
	for i, res := range Records(records, origin) {
		if !res.OK() {
			logger.Error("Could not translate project record, dropping it",
				"index", i, "project_id", records[i].ID, "error", res.Err, "record", records[i])
			continue
		}
		nodes = append(nodes, res.Node)
	}
	logger.Debug("Translated project records", "input", len(records), "output", len(nodes))
	return nodes
}
