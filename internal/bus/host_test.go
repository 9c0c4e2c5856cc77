package bus

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/specialistvlad/galaxygraph/internal/cachestore"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/fetcher"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []Outbound
}

func (r *recordingTransport) Send(_ context.Context, msg Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) messages() []Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outbound(nil), r.sent...)
}

type recordingNavigator struct {
	hrefs []string
}

func (n *recordingNavigator) Navigate(_ context.Context, href string) error {
	n.hrefs = append(n.hrefs, href)
	return nil
}

type staticSource struct {
	records []graph.RawProjectRecord
	err     error
}

func (s staticSource) ProjectData(context.Context, graph.RequestKey) ([]graph.RawProjectRecord, error) {
	return s.records, s.err
}

func freshRecords() []graph.RawProjectRecord {
	name := "libft"
	return []graph.RawProjectRecord{{ID: 1, Name: &name, Kind: "project", X: 3000, Y: 3000, Slug: "libft", By: []graph.RawEdge{}}}
}

type hostFixture struct {
	host      *Host
	transport *recordingTransport
	navigator *recordingNavigator
	ephemeral *cachestore.MemoryBackend
	logs      *bytes.Buffer
	ctx       context.Context
}

func newHostFixture(source fetcher.Source) *hostFixture {
	fx := &hostFixture{
		transport: &recordingTransport{},
		navigator: &recordingNavigator{},
		ephemeral: cachestore.NewMemoryBackend(),
		logs:      &bytes.Buffer{},
	}
	caches := cachestore.NewSelector(cachestore.NewMemoryBackend(), fx.ephemeral)
	f := fetcher.New(source, nil, caches, "https://projects.intra.42.fr")
	fx.host = NewHost(f, fx.transport, fx.navigator, Session{
		Login:    "fbes",
		Viewer:   "someone",
		Cursuses: []graph.Option{{ID: 21, Name: "42cursus"}},
		Campuses: []graph.Option{{ID: 14, Name: "14"}},
	})
	logger := slog.New(slog.NewTextHandler(fx.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	fx.ctx = ctxlog.WithLogger(context.Background(), logger)
	return fx
}

func graphResponses(t *testing.T, msgs []Outbound) []GraphDataResponse {
	t.Helper()
	var out []GraphDataResponse
	for _, m := range msgs {
		resp, ok := m.(GraphDataResponse)
		require.True(t, ok, "unexpected message %T", m)
		out = append(out, resp)
	}
	return out
}

func TestHost_UncachedKeySendsOneResponse(t *testing.T) {
	// --- Arrange ---
	fx := newHostFixture(staticSource{records: freshRecords()})

	// --- Act ---
	fx.host.Dispatch(fx.ctx, []byte(`{"type":"graph_data","cursus_id":21,"campus_id":14}`))
	fx.host.Wait()

	// --- Assert ---
	responses := graphResponses(t, fx.transport.messages())
	require.Len(t, responses, 1)
	require.Len(t, responses[0].Graph.Projects, 1)
	assert.Equal(t, 1.0, responses[0].Graph.Projects[0].X)
	assert.Len(t, responses[0].Graph.Ranks, 6)
}

func TestHost_CachedKeySendsCachedThenFresh(t *testing.T) {
	// --- Arrange ---
	fx := newHostFixture(staticSource{records: freshRecords()})
	key := graph.RequestKey{CursusID: 21, CampusID: 14, Login: "fbes"}
	stale := []graph.ProjectNode{{Name: "stale", Kind: graph.KindProject, Lines: []graph.Edge{}}}
	require.NoError(t, cachestore.NewStore(cachestore.ScopeEphemeral, fx.ephemeral).Set(fx.ctx, key, stale))

	// --- Act ---
	fx.host.Dispatch(fx.ctx, []byte(`{"type":"graph_data","cursus_id":21,"campus_id":14}`))
	fx.host.Wait()

	// --- Assert ---
	responses := graphResponses(t, fx.transport.messages())
	require.Len(t, responses, 2)
	assert.Equal(t, "stale", responses[0].Graph.Projects[0].Name)
	assert.Equal(t, "libft", responses[1].Graph.Projects[0].Name)
}

func TestHost_TransportErrorIsLoggedNotSent(t *testing.T) {
	fx := newHostFixture(staticSource{err: errors.New("status 502")})

	fx.host.Dispatch(fx.ctx, []byte(`{"type":"graph_data","cursus_id":21,"campus_id":14}`))
	fx.host.Wait()

	assert.Empty(t, fx.transport.messages())
	assert.Contains(t, fx.logs.String(), "Error while fetching graph data")
	assert.Contains(t, fx.logs.String(), "level=ERROR")
}

func TestHost_InvalidRequestIsIgnored(t *testing.T) {
	fx := newHostFixture(staticSource{records: freshRecords()})

	fx.host.Dispatch(fx.ctx, []byte(`{"type":"graph_data","cursus_id":0,"campus_id":14}`))
	fx.host.Dispatch(fx.ctx, []byte(`{"type":"bogus"}`))
	fx.host.Wait()

	assert.Empty(t, fx.transport.messages())
	assert.Contains(t, fx.logs.String(), "Ignoring graph data request")
	assert.Contains(t, fx.logs.String(), `unknown message type \"bogus\"`)
}

func TestHost_Start(t *testing.T) {
	t.Run("available cursuses only", func(t *testing.T) {
		fx := newHostFixture(staticSource{})

		require.NoError(t, fx.host.Start(fx.ctx))

		msgs := fx.transport.messages()
		require.Len(t, msgs, 1)
		init := msgs[0].(InitData)
		assert.Equal(t, []graph.Option{{ID: 21, Name: "42cursus"}}, init.Cursuses)
		assert.Equal(t, []graph.Option{{ID: 14, Name: "14"}}, init.Campuses)
	})

	t.Run("with catalog", func(t *testing.T) {
		fx := newHostFixture(staticSource{})
		fx.host.session.ExtraCursuses = true

		require.NoError(t, fx.host.Start(fx.ctx))

		init := fx.transport.messages()[0].(InitData)
		require.Len(t, init.Cursuses, len(graph.DefaultCursuses()))
		assert.Equal(t, graph.Option{ID: 21, Name: "42cursus"}, init.Cursuses[0])
		assert.Equal(t, graph.Option{ID: 1, Name: "42 (Improved Intra)"}, init.Cursuses[1])
	})
}

func TestHost_ProjectLinkClick(t *testing.T) {
	testCases := []struct {
		name     string
		href     string
		expected []string
	}{
		{name: "https", href: "https://projects.intra.42.fr/projects/libft", expected: []string{"https://projects.intra.42.fr/projects/libft"}},
		{name: "http", href: "http://localhost:8080/projects/libft", expected: []string{"http://localhost:8080/projects/libft"}},
		{name: "relative", href: "/projects/libft"},
		{name: "javascript", href: "javascript:alert(1)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newHostFixture(staticSource{})

			fx.host.HandleProjectLinkClick(fx.ctx, ProjectLinkClick{Href: tc.href})

			assert.Equal(t, tc.expected, fx.navigator.hrefs)
		})
	}
}

func TestHost_SurfaceReports(t *testing.T) {
	fx := newHostFixture(staticSource{})

	fx.host.Dispatch(fx.ctx, []byte(`{"type":"error","message":"render failed"}`))
	fx.host.Dispatch(fx.ctx, []byte(`{"type":"warning","message":"missing node"}`))

	logs := fx.logs.String()
	assert.Contains(t, logs, `level=ERROR msg="surface: render failed"`)
	assert.Contains(t, logs, `level=WARN msg="surface: missing node"`)
	assert.Empty(t, fx.transport.messages())
}
