package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/specialistvlad/galaxygraph/internal/config"
	"github.com/specialistvlad/galaxygraph/internal/hcl_adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectData = `[
  {"id": 1, "state": "finished", "final_mark": 125, "kind": "project", "name": "Libft",
   "x": 3000, "y": 3000, "duration": "", "rules": "", "description": "", "slug": "libft", "by": []},
  {"id": 2, "state": null, "final_mark": null, "kind": "piscine", "name": "CPP Module 08",
   "x": 2999, "y": 2999, "duration": "", "rules": "", "description": "", "slug": "cpp-module-08",
   "by": [{"points": [[2999, 2999], [3000, 3000]]}]}
]`

func newUpstream(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/project_data.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, projectData)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func readFrame(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestApp_SurfaceEndToEnd(t *testing.T) {
	// --- Arrange ---
	upstream, calls := newUpstream(t)
	x := 3009
	testApp, logs := SetupAppTest(t, &Config{Listen: "127.0.0.1:0"}, fmt.Sprintf(`
upstream {
  base_url    = %q
  retry_count = 0
}
patch_link {
  mode = "static"
}
cursus "21" {
  name = "42cursus"
}
patch {
  cursus_id  = 21
  project_id = 1
  x          = %d
  kind       = "inner_exam"
}
`, upstream.URL, x))

	srv := httptest.NewServer(testApp.Handler())
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("X-Viewer-Login", "fbes")
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/surface?login=fbes&campus_id=14", header)
	require.NoError(t, err)
	defer ws.Close()

	// --- Act ---
	init := readFrame(t, ws)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"graph_data","cursus_id":21,"campus_id":14}`)))
	first := readFrame(t, ws)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"graph_data","cursus_id":21,"campus_id":14}`)))
	cached := readFrame(t, ws)
	fresh := readFrame(t, ws)

	// --- Assert ---
	assert.Equal(t, "init_data", init["type"])
	assert.Equal(t, []any{map[string]any{"id": 21.0, "name": "42cursus"}}, init["cursusList"])

	projects := first["graph"].(map[string]any)["projects"].([]any)
	require.Len(t, projects, 2)
	libft := projects[0].(map[string]any)
	assert.Equal(t, "exam", libft["kind"], "static patch kind wins")
	assert.Equal(t, 10.0, libft["x"])
	assert.Equal(t, upstream.URL+"/projects/libft", libft["url"])
	module := projects[1].(map[string]any)
	assert.Equal(t, "final_module", module["kind"])
	assert.Equal(t, []any{map[string]any{
		"source": map[string]any{"x": 0.0, "y": 0.0},
		"target": map[string]any{"x": 1.0, "y": 1.0},
	}}, module["lines"])

	assert.Equal(t, first["graph"], cached["graph"], "second request is answered from the cache first")
	assert.Equal(t, first["graph"], fresh["graph"])
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, logs.String(), "Graph data loaded")
}

func TestApp_Health(t *testing.T) {
	testApp, _ := SetupAppTest(t, &Config{Listen: "127.0.0.1:0"}, "")
	srv := httptest.NewServer(testApp.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	testApp, logs := SetupAppTest(t, &Config{Listen: "127.0.0.1:0"}, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Serving surfaces")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Contains(t, logs.String(), "Shutting down")
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		path := t.TempDir() + "/bad.hcl"
		require.NoError(t, writeString(path, "cache {\n  backend = \"disk\"\n}"))

		_, err := NewApp(context.Background(), io.Discard, &Config{Listen: ":0", ConfigPath: path}, hcl_adapter.NewLoader())

		require.Error(t, err)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		model := config.Default()
		model.Cache.Backend = config.BackendRedis
		model.Cache.RedisURL = "redis://127.0.0.1:1/0"

		_, err := NewApp(context.Background(), io.Discard, &Config{Listen: ":0"}, staticLoader{model: model})

		require.ErrorContains(t, err, "failed to set up persistent cache")
	})
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	_, err = NewConfig(Config{Listen: ":8080", HealthcheckPort: -1})
	require.Error(t, err)

	cfg, err := NewConfig(Config{Listen: ":8080"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
}
