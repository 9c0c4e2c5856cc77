package patchlink

import (
	"context"
	"testing"

	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestApply(t *testing.T) {
	// --- Arrange ---
	records := []graph.RawProjectRecord{
		{ID: 1, X: 10, Y: 20, Kind: "project", By: []graph.RawEdge{}},
		{ID: 2, X: 30, Y: 40, Kind: "project", By: []graph.RawEdge{}},
		{ID: 3, X: 50, Y: 60, Kind: "project"},
	}
	lines := []graph.RawEdge{{Points: [][]float64{{1, 2}, {3, 4}}}}
	patches := map[int]graph.PatchRecord{
		1: {X: f64(100), Y: f64(200), By: lines, Kind: "inner_planet"},
		2: {Kind: "not_in_vocabulary"},
		3: {Y: f64(600)},
		9: {X: f64(1)},
	}

	// --- Act ---
	out := Apply(records, patches)

	// --- Assert ---
	require.Len(t, out, 3)
	assert.Equal(t, 100.0, out[0].X)
	assert.Equal(t, 200.0, out[0].Y)
	assert.Equal(t, lines, out[0].By)
	assert.Equal(t, graph.KindFinalModule, out[0].PatchedKind)

	assert.Equal(t, 30.0, out[1].X)
	assert.Empty(t, out[1].PatchedKind)

	assert.Equal(t, 50.0, out[2].X)
	assert.Equal(t, 600.0, out[2].Y)
	assert.Nil(t, out[2].By, "a patch without lines keeps the record's lines")

	assert.Equal(t, 10.0, records[0].X, "input records must not be modified")
}

func TestApply_NoPatches(t *testing.T) {
	records := []graph.RawProjectRecord{{ID: 1}}
	out := Apply(records, nil)
	assert.Equal(t, records, out)
}

func TestStaticLink(t *testing.T) {
	link := NewStaticLink(map[int]map[int]graph.PatchRecord{
		21: {42: {Kind: "inner_exam"}},
	})

	patches, err := link.Request(context.Background(), nil, testKey)
	require.NoError(t, err)
	assert.Equal(t, map[int]graph.PatchRecord{42: {Kind: "inner_exam"}}, patches)

	patches[42] = graph.PatchRecord{}
	again, err := link.Request(context.Background(), nil, testKey)
	require.NoError(t, err)
	assert.Equal(t, "inner_exam", again[42].Kind, "callers get a copy")

	other, err := link.Request(context.Background(), nil, graph.RequestKey{CursusID: 9, CampusID: 1, Login: "x"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStaticLink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStaticLink(nil).Request(ctx, nil, testKey)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNoopLink(t *testing.T) {
	patches, err := NoopLink{}.Request(context.Background(), nil, testKey)
	require.NoError(t, err)
	assert.NotNil(t, patches)
	assert.Empty(t, patches)
}
