package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/galaxygraph/internal/hcl_adapter"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing from an HCL
// configuration string.
func SetupAppTest(t *testing.T, appConfig *Config, hcl string) (*App, *SafeBuffer) {
	t.Helper()

	if hcl != "" {
		path := t.TempDir() + "/galaxygraph.hcl"
		require.NoError(t, os.WriteFile(path, []byte(hcl), 0o644))
		appConfig.ConfigPath = path
	}

	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp, err := NewApp(context.Background(), logBuffer, appConfig, hcl_adapter.NewLoader())
	require.NoError(t, err)

	t.Cleanup(func() {
		testApp.Close()
		if os.Getenv("GALAXYGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
