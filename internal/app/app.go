package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/galaxygraph/internal/bus"
	"github.com/specialistvlad/galaxygraph/internal/cachestore"
	"github.com/specialistvlad/galaxygraph/internal/config"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/fetcher"
	"github.com/specialistvlad/galaxygraph/internal/patchlink"
	"github.com/specialistvlad/galaxygraph/internal/surface"
	"github.com/specialistvlad/galaxygraph/internal/upstream"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx    context.Context
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model

	source *upstream.Client
	caches *cachestore.Selector
	link   patchlink.Link

	httpServer *http.Server
	closers    []func() error
}

// NewApp is the constructor for the main application. It loads the
// configuration and connects to every backing service; a failure here is a
// startup error.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if appConfig.ConfigPath != "" {
		paths = append(paths, appConfig.ConfigPath)
	}
	model, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "upstream", model.Upstream.BaseURL)

	a := &App{
		ctx:    ctx,
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
	}

	a.source = newSource(model.Upstream)
	a.closers = append(a.closers, a.source.Close)

	if a.caches, err = a.newCaches(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.link, err = a.newLink(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Handler returns the HTTP routes served by the app: the surface endpoint
// and /health.
func (a *App) Handler() http.Handler {
	s := a.model.Surface
	endpoint := surface.NewHandler(surface.Config{
		Cursuses:       a.model.Cursuses,
		Campuses:       a.model.Campuses,
		ExtraCursuses:  a.model.ExtraCursuses,
		AllowedOrigins: s.AllowedOrigins,
		WriteTimeout:   s.WriteTimeout,
	}, a.newLoader)

	mux := http.NewServeMux()
	mux.Handle(s.Path, endpoint)
	mux.HandleFunc("/health", a.healthHandler)
	return mux
}

// newLoader gives each surface connection its own fetcher, so that requests
// only supersede requests of the same page.
func (a *App) newLoader() bus.Loader {
	return fetcher.New(a.source, a.link, a.caches, a.model.Upstream.BaseURL)
}

// Close releases every backing connection. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
