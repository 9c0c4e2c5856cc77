// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/galaxygraph/internal/config"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// edgeListType is the cty shape of a `by` attribute: a list of edges, each a
// list of [x, y] points.
var edgeListType = cty.List(cty.List(cty.List(cty.Number)))

func (l *Loader) translateRoot(ctx context.Context, root *fileRoot, evalCtx *hcl.EvalContext, model *config.Model) error {
	if root.ExtraCursuses != nil {
		model.ExtraCursuses = *root.ExtraCursuses
	}
	if err := translateUpstream(root.Upstream, &model.Upstream); err != nil {
		return err
	}
	if err := translateCache(root.Cache, &model.Cache); err != nil {
		return err
	}
	if err := translatePatchLink(root.PatchLink, &model.PatchLink); err != nil {
		return err
	}
	if err := translateSurface(root.Surface, &model.Surface); err != nil {
		return err
	}
	for _, p := range root.Patches {
		if err := translatePatch(ctx, p, evalCtx, model.Patches); err != nil {
			return err
		}
	}
	return nil
}

func translateUpstream(b *upstreamBlock, u *config.Upstream) error {
	if b == nil {
		return nil
	}
	setString(&u.BaseURL, b.BaseURL)
	setString(&u.SessionCookie, b.SessionCookie)
	setString(&u.UserAgent, b.UserAgent)
	if b.RetryCount != nil {
		u.RetryCount = *b.RetryCount
	}
	return firstError(
		setDuration("upstream.timeout", &u.Timeout, b.Timeout),
		setDuration("upstream.retry_wait", &u.RetryWait, b.RetryWait),
		setDuration("upstream.retry_max_wait", &u.RetryMaxWait, b.RetryMaxWait),
	)
}

func translateCache(b *cacheBlock, c *config.Cache) error {
	if b == nil {
		return nil
	}
	setString(&c.Backend, b.Backend)
	setString(&c.RedisURL, b.RedisURL)
	setString(&c.Prefix, b.Prefix)
	return firstError(
		setDuration("cache.ttl", &c.TTL, b.TTL),
		setDuration("cache.ephemeral_ttl", &c.EphemeralTTL, b.EphemeralTTL),
	)
}

func translatePatchLink(b *patchLinkBlock, p *config.PatchLink) error {
	if b == nil {
		return nil
	}
	setString(&p.Mode, b.Mode)
	setString(&p.URL, b.URL)
	setString(&p.Namespace, b.Namespace)
	setString(&p.Event, b.Event)
	if b.InsecureSkipVerify != nil {
		p.InsecureSkipVerify = *b.InsecureSkipVerify
	}
	return setDuration("patch_link.timeout", &p.Timeout, b.Timeout)
}

func translateSurface(b *surfaceBlock, s *config.Surface) error {
	if b == nil {
		return nil
	}
	setString(&s.Path, b.Path)
	if b.AllowedOrigins != nil {
		s.AllowedOrigins = b.AllowedOrigins
	}
	return setDuration("surface.write_timeout", &s.WriteTimeout, b.WriteTimeout)
}

// translateOptions converts labelled cursus or campus blocks. A repeated id
// keeps the last name.
func translateOptions(kind string, blocks []*optionBlock) ([]graph.Option, error) {
	out := make([]graph.Option, 0, len(blocks))
	index := make(map[int]int, len(blocks))
	for _, b := range blocks {
		id, err := strconv.Atoi(b.ID)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s block label must be a positive id, got %q", kind, b.ID)
		}
		if i, ok := index[id]; ok {
			out[i].Name = b.Name
			continue
		}
		index[id] = len(out)
		out = append(out, graph.Option{ID: id, Name: b.Name})
	}
	return out, nil
}

func translatePatch(ctx context.Context, b *patchBlock, evalCtx *hcl.EvalContext, patches map[int]map[int]graph.PatchRecord) error {
	logger := ctxlog.FromContext(ctx).With("cursus_id", b.CursusID, "project_id", b.ProjectID)
	ctx = ctxlog.WithLogger(ctx, logger)

	rec := graph.PatchRecord{X: b.X, Y: b.Y}
	if b.Kind != nil {
		rec.Kind = *b.Kind
	}
	if isExprDefined(ctx, b.By, "by") {
		edges, err := decodeEdges(b.By, evalCtx)
		if err != nil {
			return fmt.Errorf("patch for project %d in cursus %d: %w", b.ProjectID, b.CursusID, err)
		}
		rec.By = edges
	}

	if patches[b.CursusID] == nil {
		patches[b.CursusID] = make(map[int]graph.PatchRecord)
	}
	patches[b.CursusID][b.ProjectID] = rec
	logger.Debug("Registered static patch.")
	return nil
}

// decodeEdges evaluates a `by` expression into raw edges.
func decodeEdges(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]graph.RawEdge, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid 'by' value: %w", diags)
	}
	val, err := convert.Convert(val, edgeListType)
	if err != nil {
		return nil, fmt.Errorf("'by' must be a list of [[x, y], [x, y]] pairs: %w", err)
	}
	var points [][][]float64
	if err := gocty.FromCtyValue(val, &points); err != nil {
		return nil, fmt.Errorf("failed to read 'by': %w", err)
	}

	edges := make([]graph.RawEdge, len(points))
	for i, p := range points {
		edges[i] = graph.RawEdge{Points: p}
		if _, _, err := edges[i].Endpoints(); err != nil {
			return nil, fmt.Errorf("'by' edge %d: %w", i, err)
		}
	}
	return edges, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(name string, dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", name, *src)
	}
	*dst = d
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
