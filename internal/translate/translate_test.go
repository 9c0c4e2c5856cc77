package translate

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "https://projects.intra.42.fr"

func strPtr(s string) *string { return &s }

func record(id int, name string) graph.RawProjectRecord {
	return graph.RawProjectRecord{
		ID:    id,
		Name:  strPtr(name),
		Kind:  "project",
		State: "finished",
		X:     3100,
		Y:     3200,
		Slug:  "slug-" + name,
		By:    []graph.RawEdge{},
	}
}

func TestRecord_CoordinateTransform(t *testing.T) {
	// --- Arrange ---
	rec := record(1, "libft")
	rec.X, rec.Y = 2999, 2999
	rec.By = []graph.RawEdge{{Points: [][]float64{{2999, 2999}, {2999, 2999}}}}

	// --- Act ---
	res := Record(rec, origin)

	// --- Assert ---
	require.NoError(t, res.Err)
	assert.Equal(t, 0.0, res.Node.X)
	assert.Equal(t, 0.0, res.Node.Y)
	require.Len(t, res.Node.Lines, 1)
	assert.Equal(t, graph.Edge{}, res.Node.Lines[0])
}

func TestRecord_Fields(t *testing.T) {
	mark := 125
	rec := record(7, "ft_printf")
	rec.FinalMark = &mark
	rec.Rules = "libft"
	rec.Description = "printf"
	rec.Duration = "2 weeks"
	rec.By = []graph.RawEdge{{Points: [][]float64{{3000, 3001}, {3010, 2990}}}}

	res := Record(rec, origin+"/")

	want := graph.ProjectNode{
		State:        "finished",
		FinalMark:    &mark,
		Kind:         graph.KindProject,
		Name:         "ft_printf",
		X:            101,
		Y:            201,
		Duration:     "2 weeks",
		Requirements: "libft",
		Description:  "printf",
		URL:          "https://projects.intra.42.fr/projects/slug-ft_printf",
		Lines: []graph.Edge{{
			Source: graph.Point{X: 1, Y: 2},
			Target: graph.Point{X: 11, Y: -9},
		}},
	}
	require.NoError(t, res.Err)
	if diff := cmp.Diff(want, res.Node); diff != "" {
		t.Errorf("Record() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		project  string
		upstream string
		patched  graph.Kind
		want     graph.Kind
	}{
		{name: "module by name", project: "C Module", upstream: "project", want: graph.KindModule},
		{name: "module is case-insensitive", project: "CPP MODULE 03", upstream: "project", want: graph.KindModule},
		{name: "final module", project: "CPP Module 08", upstream: "project", want: graph.KindFinalModule},
		{name: "08 without module keeps kind", project: "Exam Rank 08", upstream: "exam", want: graph.KindExam},
		{name: "upstream kind passes through", project: "minishell", upstream: "big_project", want: graph.KindBigProject},
		{name: "unknown upstream kind passes through", project: "piscine", upstream: "piscine", want: graph.Kind("piscine")},
		{name: "patched kind wins over name", project: "CPP Module 08", upstream: "project", patched: graph.KindExam, want: graph.KindExam},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.project, tc.upstream, tc.patched))
		})
	}
}

func TestRecord_PatchedExamKind(t *testing.T) {
	rec := record(3, "Exam Module")
	kind, ok := graph.KindFromInner("inner_exam")
	require.True(t, ok)
	rec.PatchedKind = kind

	res := Record(rec, origin)

	require.NoError(t, res.Err)
	assert.Equal(t, graph.KindExam, res.Node.Kind)
}

func TestRecord_Failures(t *testing.T) {
	noName := record(1, "x")
	noName.Name = nil

	noEdges := record(2, "y")
	noEdges.By = nil

	shortEdge := record(3, "z")
	shortEdge.By = []graph.RawEdge{{Points: [][]float64{{1, 2}}}}

	assert.ErrorIs(t, Record(noName, origin).Err, ErrMissingName)
	assert.ErrorIs(t, Record(noEdges, origin).Err, ErrMissingEdges)
	assert.Error(t, Record(shortEdge, origin).Err)
}

func TestTranslate_DropsInvalidRecordKeepingOrder(t *testing.T) {
	// --- Arrange ---
	records := []graph.RawProjectRecord{record(1, "a"), record(2, "b"), record(3, "c"), record(4, "d")}
	records[2].By = nil
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// --- Act ---
	nodes := Translate(records, origin, logger)

	// --- Assert ---
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"a", "b", "d"}, []string{nodes[0].Name, nodes[1].Name, nodes[2].Name})
	assert.Contains(t, logs.String(), "Could not translate project record")
	assert.Contains(t, logs.String(), "project_id=3")
}

func TestTranslate_EmptyInput(t *testing.T) {
	nodes := Translate(nil, origin, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.NotNil(t, nodes)
	assert.Empty(t, nodes)
}

func TestTranslate_DropsUndecodableEntries(t *testing.T) {
	// --- Arrange ---
	entries := []string{
		`{"id": 1, "name": "a", "x": 2999, "y": 2999, "by": []}`,
		`{"id": 2, "name": "b", "x": 2999, "y": 2999, "by": "oops"}`,
		`{"id": 3, "name": 7, "by": []}`,
		`{"id": 4, "name": "d", "x": 2999, "y": 2999, "by": []}`,
	}
	records := make([]graph.RawProjectRecord, len(entries))
	for i, e := range entries {
		records[i] = graph.DecodeRecord([]byte(e))
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	// --- Act ---
	nodes := Translate(records, origin, logger)

	// --- Assert ---
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].Name)
	assert.Equal(t, "d", nodes[1].Name)
	assert.ErrorIs(t, Record(records[1], origin).Err, ErrUndecodable)
	assert.Contains(t, logs.String(), "project_id=2")
	assert.Contains(t, logs.String(), "project_id=3")
}
