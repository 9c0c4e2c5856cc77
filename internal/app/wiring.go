package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/galaxygraph/internal/cachestore"
	"github.com/specialistvlad/galaxygraph/internal/config"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/patchlink"
	"github.com/specialistvlad/galaxygraph/internal/upstream"
)

func newSource(u config.Upstream) *upstream.Client {
	return upstream.New(upstream.Config{
		BaseURL:       u.BaseURL,
		Timeout:       u.Timeout,
		RetryCount:    u.RetryCount,
		RetryWait:     u.RetryWait,
		RetryMaxWait:  u.RetryMaxWait,
		SessionCookie: u.SessionCookie,
		UserAgent:     u.UserAgent,
	})
}

// newCaches builds the selector. The ephemeral scope always lives in memory
// for the life of the process, its entries expiring after EphemeralTTL. The
// persistent scope follows the cache block.
func (a *App) newCaches(ctx context.Context) (*cachestore.Selector, error) {
	logger := ctxlog.FromContext(ctx)
	c := a.model.Cache
	ephemeral := cachestore.NewMemoryBackendWithTTL(c.EphemeralTTL)

	switch c.Backend {
	case config.BackendRedis:
		backend, err := cachestore.NewRedisBackend(ctx, c.RedisURL, c.Prefix, c.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to set up persistent cache: %w", err)
		}
		a.closers = append(a.closers, backend.Close)
		logger.Info("Persistent cache backed by redis", "prefix", c.Prefix, "ttl", c.TTL)
		return cachestore.NewSelector(backend, ephemeral), nil
	default:
		logger.Info("Persistent cache backed by memory, entries are lost on restart", "ttl", c.TTL)
		return cachestore.NewSelector(cachestore.NewMemoryBackendWithTTL(c.TTL), ephemeral), nil
	}
}

func (a *App) newLink(ctx context.Context) (patchlink.Link, error) {
	logger := ctxlog.FromContext(ctx)
	p := a.model.PatchLink

	switch p.Mode {
	case config.PatchSocketIO:
		link, err := patchlink.DialSocket(ctx, patchlink.SocketConfig{
			URL:                p.URL,
			Namespace:          p.Namespace,
			Event:              p.Event,
			Timeout:            p.Timeout,
			InsecureSkipVerify: p.InsecureSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up patch link: %w", err)
		}
		a.closers = append(a.closers, link.Close)
		return link, nil
	case config.PatchStatic:
		logger.Info("Using static patches", "cursuses", len(a.model.Patches))
		return patchlink.NewStaticLink(a.model.Patches), nil
	default:
		logger.Info("No patch source configured, upstream data is used as is")
		return patchlink.NoopLink{}, nil
	}
}
