// Package surface serves the rendering surface over a websocket. Every
// connection is one embedded surface: it gets its own bus.Host and its own
// loader, so a newer request only supersedes older requests of the same page.
package surface

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/specialistvlad/galaxygraph/internal/bus"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// ViewerHeader carries the authenticated login set by the fronting proxy.
const ViewerHeader = "X-Viewer-Login"

const defaultWriteTimeout = 10 * time.Second

// Config describes what every surface is offered.
type Config struct {
	Cursuses      []graph.Option
	Campuses      []graph.Option
	ExtraCursuses bool
	// AllowedOrigins restricts the Origin header of upgrade requests. Empty
	// allows any origin.
	AllowedOrigins []string
	WriteTimeout   time.Duration
}

// LoaderFactory returns a fresh loader for one connection.
type LoaderFactory func() bus.Loader

// Handler upgrades requests to surface connections.
type Handler struct {
	cfg       Config
	newLoader LoaderFactory
	upgrader  websocket.Upgrader
}

// NewHandler creates the websocket endpoint.
func NewHandler(cfg Config, newLoader LoaderFactory) *Handler {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	h := &Handler{cfg: cfg, newLoader: newLoader}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, r.Header.Get("Origin"))
}

// session builds the page description from the upgrade request. The shown
// login defaults to the viewer, and a campus_id narrows the campus list.
func (h *Handler) session(r *http.Request) (bus.Session, error) {
	q := r.URL.Query()
	viewer := r.Header.Get(ViewerHeader)
	if viewer == "" {
		viewer = q.Get("viewer")
	}
	login := q.Get("login")
	if login == "" {
		login = viewer
	}
	if login == "" {
		return bus.Session{}, errors.New("login or viewer is required")
	}

	campuses := h.cfg.Campuses
	if raw := q.Get("campus_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return bus.Session{}, errors.New("campus_id must be a positive integer")
		}
		campuses = []graph.Option{campusOption(h.cfg.Campuses, id)}
	}

	return bus.Session{
		Login:         login,
		Viewer:        viewer,
		Cursuses:      h.cfg.Cursuses,
		Campuses:      campuses,
		ExtraCursuses: h.cfg.ExtraCursuses,
	}, nil
}

func campusOption(known []graph.Option, id int) graph.Option {
	for _, o := range known {
		if o.ID == id {
			return o
		}
	}
	return graph.Option{ID: id, Name: strconv.Itoa(id)}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := h.session(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	ctx, logger := ctxlog.With(r.Context(), "component", "surface", "conn", id)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Could not upgrade surface connection", "error", err)
		return
	}
	logger.Info("Surface connected", "remote", r.RemoteAddr, "login", session.Login)

	ctx, cancel := context.WithCancel(ctx)
	c := &conn{ws: ws, writeTimeout: h.cfg.WriteTimeout}
	host := bus.NewHost(h.newLoader(), c, c, session)
	defer func() {
		cancel()
		host.Wait()
		ws.Close()
		logger.Info("Surface disconnected")
	}()

	if err := host.Start(ctx); err != nil {
		logger.Warn("Could not initialize surface", "error", err)
		return
	}

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Surface connection closed unexpectedly", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			logger.Warn("Ignoring non-text frame from surface", "frame_type", msgType)
			continue
		}
		host.Dispatch(ctx, data)
	}
}

// conn serializes writes to one websocket and doubles as the navigator: the
// page shell owns the browser location, so navigation is a frame as well.
type conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	mu sync.Mutex
}

func (c *conn) Send(ctx context.Context, msg bus.Outbound) error {
	data, err := bus.Encode(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *conn) Navigate(ctx context.Context, href string) error {
	return c.Send(ctx, bus.Navigate{Href: href})
}
