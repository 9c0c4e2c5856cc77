package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Every block is optional so that configuration can be split across
// files.
type fileRoot struct {
	Upstream      *upstreamBlock  `hcl:"upstream,block"`
	Cache         *cacheBlock     `hcl:"cache,block"`
	PatchLink     *patchLinkBlock `hcl:"patch_link,block"`
	Surface       *surfaceBlock   `hcl:"surface,block"`
	Cursuses      []*optionBlock  `hcl:"cursus,block"`
	Campuses      []*optionBlock  `hcl:"campus,block"`
	Patches       []*patchBlock   `hcl:"patch,block"`
	ExtraCursuses *bool           `hcl:"extra_cursuses,optional"`
	Remain        hcl.Body        `hcl:",remain"`
}

type upstreamBlock struct {
	BaseURL       *string `hcl:"base_url,optional"`
	SessionCookie *string `hcl:"session_cookie,optional"`
	UserAgent     *string `hcl:"user_agent,optional"`
	Timeout       *string `hcl:"timeout,optional"`
	RetryCount    *int    `hcl:"retry_count,optional"`
	RetryWait     *string `hcl:"retry_wait,optional"`
	RetryMaxWait  *string `hcl:"retry_max_wait,optional"`
}

type cacheBlock struct {
	Backend      *string `hcl:"backend,optional"`
	RedisURL     *string `hcl:"redis_url,optional"`
	Prefix       *string `hcl:"prefix,optional"`
	TTL          *string `hcl:"ttl,optional"`
	EphemeralTTL *string `hcl:"ephemeral_ttl,optional"`
}

type patchLinkBlock struct {
	Mode               *string `hcl:"mode,optional"`
	URL                *string `hcl:"url,optional"`
	Namespace          *string `hcl:"namespace,optional"`
	Event              *string `hcl:"event,optional"`
	Timeout            *string `hcl:"timeout,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

type surfaceBlock struct {
	Path           *string  `hcl:"path,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	WriteTimeout   *string  `hcl:"write_timeout,optional"`
}

// optionBlock is a `cursus` or `campus` block. The label is the id.
type optionBlock struct {
	ID   string `hcl:"id,label"`
	Name string `hcl:"name"`
}

// patchBlock overrides one project of one cursus. `by` is kept as an
// expression and decoded through cty, since its shape is nested lists.
type patchBlock struct {
	CursusID  int            `hcl:"cursus_id"`
	ProjectID int            `hcl:"project_id"`
	X         *float64       `hcl:"x,optional"`
	Y         *float64       `hcl:"y,optional"`
	Kind      *string        `hcl:"kind,optional"`
	By        hcl.Expression `hcl:"by,optional"`
}
