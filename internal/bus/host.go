package bus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/fetcher"
	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Loader is the part of fetcher.Fetcher used by Host.
type Loader interface {
	Load(ctx context.Context, key graph.RequestKey, viewer string) ([]graph.ProjectNode, *fetcher.Pending)
}

// Transport delivers outbound messages to the surface.
type Transport interface {
	Send(ctx context.Context, msg Outbound) error
}

// Navigator moves the page shell to another location.
type Navigator interface {
	Navigate(ctx context.Context, href string) error
}

// Session describes the page a surface is embedded in.
type Session struct {
	// Login whose graph is shown.
	Login string
	// Viewer is the authenticated user; it selects the cache scope.
	Viewer   string
	Cursuses []graph.Option
	Campuses []graph.Option
	// ExtraCursuses appends the known cursus catalog to Cursuses.
	ExtraCursuses bool
}

// Host answers the messages of one surface.
type Host struct {
	loader    Loader
	transport Transport
	navigator Navigator
	session   Session

	wg sync.WaitGroup
}

var _ InboundHandler = (*Host)(nil)

// NewHost creates a host for one surface.
func NewHost(loader Loader, transport Transport, navigator Navigator, session Session) *Host {
	return &Host{loader: loader, transport: transport, navigator: navigator, session: session}
}

// Start sends init_data to the surface.
func (h *Host) Start(ctx context.Context) error {
	cursuses := h.session.Cursuses
	if h.session.ExtraCursuses {
		cursuses = graph.MergeCursuses(cursuses, graph.DefaultCursuses())
	}
	if err := h.transport.Send(ctx, InitData{Cursuses: cursuses, Campuses: h.session.Campuses}); err != nil {
		return fmt.Errorf("failed to send init data: %w", err)
	}
	return nil
}

// Dispatch decodes one frame and hands it to the matching handler. Frames
// that cannot be decoded are logged and ignored.
func (h *Host) Dispatch(ctx context.Context, data []byte) {
	msg, err := Decode(data)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Ignoring message from surface", "error", err)
		return
	}
	msg.Accept(ctx, h)
}

// Wait blocks until every pending graph delivery has finished.
func (h *Host) Wait() {
	h.wg.Wait()
}

func (h *Host) HandleGraphDataRequest(ctx context.Context, msg GraphDataRequest) {
	logger := ctxlog.FromContext(ctx)
	key, err := graph.NewRequestKey(msg.CursusID, msg.CampusID, h.session.Login)
	if err != nil {
		logger.Warn("Ignoring graph data request", "error", err)
		return
	}
	logger.Debug("Received request for graph data", "key", key.String())

	cached, pending := h.loader.Load(ctx, key, h.session.Viewer)
	if cached != nil {
		logger.Debug("Sending cached graph data while waiting for fresh data", "key", key.String())
		if err := h.transport.Send(ctx, NewGraphDataResponse(cached)); err != nil {
			logger.Warn("Could not send cached graph data", "error", err)
		}
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.deliver(ctx, key, pending)
	}()
}

func (h *Host) deliver(ctx context.Context, key graph.RequestKey, pending *fetcher.Pending) {
	logger := ctxlog.FromContext(ctx).With("key", key.String())

	nodes, err := pending.Wait(ctx)
	switch {
	case fetcher.IsSuperseded(err):
		logger.Debug("Graph data request was superseded")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("Surface went away before graph data arrived")
		return
	case err != nil:
		logger.Error("Error while fetching graph data", "error", err)
		return
	}

	logger.Debug("Fresh graph data received, sending to surface", "projects", len(nodes))
	if err := h.transport.Send(ctx, NewGraphDataResponse(nodes)); err != nil {
		logger.Warn("Could not send fresh graph data", "error", err)
	}
}

func (h *Host) HandleProjectLinkClick(ctx context.Context, msg ProjectLinkClick) {
	logger := ctxlog.FromContext(ctx)
	u, err := url.Parse(msg.Href)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		logger.Warn("Ignoring project link with invalid href", "href", msg.Href)
		return
	}
	if err := h.navigator.Navigate(ctx, u.String()); err != nil {
		logger.Warn("Could not navigate to project", "href", msg.Href, "error", err)
	}
}

func (h *Host) HandleSurfaceError(ctx context.Context, msg SurfaceError) {
	ctxlog.FromContext(ctx).Error("surface: " + msg.Message)
}

func (h *Host) HandleSurfaceWarning(ctx context.Context, msg SurfaceWarning) {
	ctxlog.FromContext(ctx).Warn("surface: " + msg.Message)
}
