package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Patch link modes.
const (
	PatchNone     = "none"
	PatchStatic   = "static"
	PatchSocketIO = "socketio"
)

// Model is the unified representation of the service configuration.
type Model struct {
	Upstream  Upstream
	Cache     Cache
	PatchLink PatchLink
	Surface   Surface

	Cursuses      []graph.Option
	Campuses      []graph.Option
	ExtraCursuses bool

	// Patches holds static overrides per cursus id and project id. They are
	// used when PatchLink.Mode is PatchStatic.
	Patches map[int]map[int]graph.PatchRecord
}

// Upstream configures the primary data source.
type Upstream struct {
	BaseURL       string
	SessionCookie string
	UserAgent     string
	Timeout       time.Duration
	RetryCount    int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
}

// Cache configures the persistent cache scope. The ephemeral scope is always
// in memory and its entries expire after EphemeralTTL.
type Cache struct {
	Backend      string
	RedisURL     string
	Prefix       string
	TTL          time.Duration
	EphemeralTTL time.Duration
}

// PatchLink configures the secondary data source.
type PatchLink struct {
	Mode               string
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Surface configures the websocket endpoint.
type Surface struct {
	Path           string
	AllowedOrigins []string
	WriteTimeout   time.Duration
}

// Default returns the configuration used when no file overrides a value.
func Default() *Model {
	return &Model{
		Upstream: Upstream{
			BaseURL:      "https://projects.intra.42.fr",
			UserAgent:    "galaxygraph",
			Timeout:      30 * time.Second,
			RetryCount:   2,
			RetryWait:    500 * time.Millisecond,
			RetryMaxWait: 5 * time.Second,
		},
		Cache: Cache{
			Backend:      BackendMemory,
			Prefix:       "galaxygraph:",
			EphemeralTTL: time.Hour,
		},
		PatchLink: PatchLink{
			Mode:      PatchNone,
			Namespace: "/",
			Event:     "patch",
			Timeout:   5 * time.Second,
		},
		Surface: Surface{
			Path:         "/surface",
			WriteTimeout: 10 * time.Second,
		},
		Cursuses: graph.DefaultCursuses(),
		Patches:  map[int]map[int]graph.PatchRecord{},
	}
}

// Validate reports every inconsistency in the model at once.
func (m *Model) Validate() error {
	var errs []error
	if m.Upstream.BaseURL == "" {
		errs = append(errs, errors.New("upstream: base_url must not be empty"))
	}
	if m.Upstream.RetryCount < 0 {
		errs = append(errs, fmt.Errorf("upstream: retry_count must not be negative, got %d", m.Upstream.RetryCount))
	}

	switch m.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if m.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache: redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache: unknown backend %q", m.Cache.Backend))
	}
	if m.Cache.EphemeralTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache: ephemeral_ttl must be positive, got %v", m.Cache.EphemeralTTL))
	}

	switch m.PatchLink.Mode {
	case PatchNone, PatchStatic:
	case PatchSocketIO:
		if m.PatchLink.URL == "" {
			errs = append(errs, errors.New("patch_link: url is required for socketio mode"))
		}
		if m.PatchLink.Event == "" {
			errs = append(errs, errors.New("patch_link: event must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("patch_link: unknown mode %q", m.PatchLink.Mode))
	}
	if m.PatchLink.Timeout <= 0 {
		errs = append(errs, errors.New("patch_link: timeout must be positive"))
	}

	if m.Surface.Path == "" || m.Surface.Path[0] != '/' {
		errs = append(errs, fmt.Errorf("surface: path must start with '/', got %q", m.Surface.Path))
	}

	for _, kind := range patchKinds(m.Patches) {
		if _, ok := graph.KindFromInner(kind); !ok && kind != "" {
			errs = append(errs, fmt.Errorf("patch: unknown kind %q", kind))
		}
	}

	return errors.Join(errs...)
}

func patchKinds(patches map[int]map[int]graph.PatchRecord) []string {
	var kinds []string
	for _, byProject := range patches {
		for _, p := range byProject {
			kinds = append(kinds, p.Kind)
		}
	}
	return kinds
}
