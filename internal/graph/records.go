package graph

import (
	"encoding/json"
	"fmt"
)

// Offset is the calibration constant between upstream pixel space and the
// normalized coordinate space.
const Offset = 2999

// Transform shifts one upstream coordinate into normalized space.
func Transform(v float64) float64 {
	return v - Offset
}

// RawEdge is one prerequisite line as delivered upstream: a pair of points,
// each an [x, y] pair.
type RawEdge struct {
	Points [][]float64 `json:"points"`
}

// Endpoints validates the edge shape and returns both points.
func (e RawEdge) Endpoints() (source, target Point, err error) {
	if len(e.Points) != 2 {
		return Point{}, Point{}, fmt.Errorf("edge has %d points, want 2", len(e.Points))
	}
	for i, p := range e.Points {
		if len(p) != 2 {
			return Point{}, Point{}, fmt.Errorf("edge point %d has %d coordinates, want 2", i, len(p))
		}
	}
	return Point{X: e.Points[0][0], Y: e.Points[0][1]}, Point{X: e.Points[1][0], Y: e.Points[1][1]}, nil
}

// RawProjectRecord is a project as served by the upstream project_data.json
// endpoint. Only the consumed fields are modelled.
type RawProjectRecord struct {
	ID          int       `json:"id"`
	State       string    `json:"state"`
	FinalMark   *int      `json:"final_mark"`
	Kind        string    `json:"kind"`
	Name        *string   `json:"name"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Duration    string    `json:"duration"`
	Rules       string    `json:"rules"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	By          []RawEdge `json:"by"`

	// PatchedKind is set by patchlink.Apply when a patch supplied a kind from
	// the inner vocabulary. It never comes from upstream.
	PatchedKind Kind `json:"-"`

	// DecodeErr is set by DecodeRecord when the entry did not match the
	// schema. Such a record only carries its id and fails translation.
	DecodeErr error `json:"-"`
}

// DecodeRecord decodes one upstream entry. A malformed entry is not an
// error for the batch: it comes back with DecodeErr set and, when the id
// itself was readable, its ID.
func DecodeRecord(raw json.RawMessage) RawProjectRecord {
	var rec RawProjectRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		var head struct {
			ID int `json:"id"`
		}
		_ = json.Unmarshal(raw, &head)
		return RawProjectRecord{ID: head.ID, DecodeErr: err}
	}
	return rec
}

// PatchRecord carries optional overrides for one project, keyed by project
// id in the mapping returned by the patch source.
type PatchRecord struct {
	X    *float64  `json:"x,omitempty"`
	Y    *float64  `json:"y,omitempty"`
	By   []RawEdge `json:"by,omitempty"`
	Kind string    `json:"kind,omitempty"`
}

// Point is a coordinate in normalized space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a prerequisite line between two normalized points.
type Edge struct {
	Source Point `json:"source"`
	Target Point `json:"target"`
}

// ProjectNode is the normalized node schema stored in the cache and sent to
// the surface.
type ProjectNode struct {
	State        string  `json:"state"`
	FinalMark    *int    `json:"final_mark"`
	Kind         Kind    `json:"kind"`
	Name         string  `json:"name"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Duration     string  `json:"duration"`
	Requirements string  `json:"requirements"`
	Description  string  `json:"description"`
	URL          string  `json:"url"`
	Lines        []Edge  `json:"lines"`
}
