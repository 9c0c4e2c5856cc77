package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/galaxygraph/internal/cachestore"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/specialistvlad/galaxygraph/internal/patchlink"
	"github.com/specialistvlad/galaxygraph/internal/translate"
)

// ErrSuperseded is the outcome of a load that was replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer load")

// IsSuperseded reports whether err is a supersession outcome.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}

// FetchError is a genuine load failure for a key.
type FetchError struct {
	Key graph.RequestKey
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load graph data (%s): %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Source provides raw upstream records.
type Source interface {
	ProjectData(ctx context.Context, key graph.RequestKey) ([]graph.RawProjectRecord, error)
}

// Fetcher loads graph data with stale-while-revalidate delivery.
type Fetcher struct {
	source Source
	link   patchlink.Link
	caches *cachestore.Selector
	origin string

	mu      sync.Mutex
	current *flight
	seq     uint64
}

// flight is the holder of the in-flight slot.
type flight struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// New creates a fetcher. origin is the canonical origin used for project
// URLs. A nil link disables patching.
func New(source Source, link patchlink.Link, caches *cachestore.Selector, origin string) *Fetcher {
	if link == nil {
		link = patchlink.NoopLink{}
	}
	return &Fetcher{source: source, link: link, caches: caches, origin: origin}
}

// InFlight reports whether a load currently owns the slot.
func (f *Fetcher) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil
}

// Load returns the cached graph for key (nil when absent) together with the
// pending fresh graph. viewer is the authenticated login and selects the
// cache scope. Any load still in flight is superseded.
func (f *Fetcher) Load(ctx context.Context, key graph.RequestKey, viewer string) ([]graph.ProjectNode, *Pending) {
	ctx, logger := ctxlog.With(ctx, "component", "fetcher", "key", key.String())

	store := f.caches.For(viewer, key.Login)
	logger.Debug("Using cache scope", "scope", store.Scope().String())
	cached, _ := store.Get(ctx, key)

	runCtx, cancel := context.WithCancelCause(ctx)
	f.mu.Lock()
	if f.current != nil {
		logger.Info("Another data fetch is already in progress, aborting it", "flight", f.current.id)
		f.current.cancel(ErrSuperseded)
	}
	f.seq++
	fl := &flight{id: f.seq, cancel: cancel}
	f.current = fl
	f.mu.Unlock()

	p := newPending()
	go f.run(runCtx, fl, key, store, p)
	return cached, p
}

func (f *Fetcher) run(ctx context.Context, fl *flight, key graph.RequestKey, store *cachestore.Store, p *Pending) {
	defer fl.cancel(nil)
	logger := ctxlog.FromContext(ctx).With("flight", fl.id)

	records, err := f.source.ProjectData(ctx, key)
	if err != nil {
		f.finish(ctx, fl, key, store, p, nil, err)
		return
	}
	logger.Debug("Fetched upstream records", "count", len(records))

	patches, err := f.link.Request(ctx, records, key)
	if err != nil {
		if IsSuperseded(context.Cause(ctx)) {
			f.finish(ctx, fl, key, store, p, nil, err)
			return
		}
		logger.Warn("Could not apply patch data, using upstream data as is", "error", err)
		patches = nil
	}

	nodes := translate.Translate(patchlink.Apply(records, patches), f.origin, logger)
	f.finish(ctx, fl, key, store, p, nodes, nil)
}

// finish releases the slot if fl still owns it, writes the cache on success
// and resolves p. A load that lost the slot resolves with ErrSuperseded.
func (f *Fetcher) finish(ctx context.Context, fl *flight, key graph.RequestKey, store *cachestore.Store, p *Pending, nodes []graph.ProjectNode, err error) {
	logger := ctxlog.FromContext(ctx).With("flight", fl.id)

	f.mu.Lock()
	owner := f.current == fl
	if owner {
		f.current = nil
	}
	f.mu.Unlock()

	if !owner {
		logger.Debug("Load was superseded, discarding its result")
		p.resolve(nil, ErrSuperseded)
		return
	}

	if err != nil {
		p.resolve(nil, &FetchError{Key: key, Err: err})
		return
	}

	if err := store.Set(ctx, key, nodes); err != nil {
		logger.Warn("Could not update graph cache", "error", err)
	}
	logger.Info("Graph data loaded", "projects", len(nodes))
	p.resolve(nodes, nil)
}
