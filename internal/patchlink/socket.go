package patchlink

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout bounds a handshake when the configuration does not.
const DefaultTimeout = 5 * time.Second

// eventSocket is the part of a socket.io client used by SocketLink.
type eventSocket interface {
	On(event string, handler func(...any))
	Emit(event string, payload any)
}

// socketIOClient adapts *socket.Socket to eventSocket.
type socketIOClient struct {
	io *socket.Socket
}

func (c socketIOClient) On(event string, handler func(...any)) {
	c.io.On(types.EventName(event), handler)
}

func (c socketIOClient) Emit(event string, payload any) {
	c.io.Emit(event, payload)
}

// SocketConfig describes the socket.io patch source.
type SocketConfig struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// SocketLink asks a socket.io peer for patches. It emits Event with the
// dataset and a fresh request_id, and waits for exactly one of "<Event>-ret"
// or "<Event>-err" echoing that id. Requests are serialized; an answer whose
// id is not the pending one is dropped, so a late answer to an abandoned
// request never settles a newer one.
type SocketLink struct {
	client  eventSocket
	event   string
	timeout time.Duration
	close   func()
	newID   func() string

	mu sync.Mutex // held for a whole request

	pendingMu sync.Mutex
	pending   *pendingRequest
}

type pendingRequest struct {
	id   string
	done chan linkResult
}

type patchRequest struct {
	RequestID string                   `json:"request_id"`
	CursusID  int                      `json:"cursus_id"`
	CampusID  int                      `json:"campus_id"`
	Login     string                   `json:"login"`
	Projects  []graph.RawProjectRecord `json:"projects"`
}

type patchResponse struct {
	RequestID string                    `json:"request_id"`
	Projects  map[int]graph.PatchRecord `json:"projects"`
}

type patchFailure struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// answerHeader is read first so that an answer can be matched to its request
// even when the rest of the payload is malformed.
type answerHeader struct {
	RequestID string `json:"request_id"`
}

type linkResult struct {
	patches map[int]graph.PatchRecord
	err     error
}

// DialSocket connects to the patch source and returns a ready link.
func DialSocket(ctx context.Context, cfg SocketConfig) (*SocketLink, error) {
	logger := ctxlog.FromContext(ctx).With("component", "patchlink", "url", cfg.URL)
	logger.Info("Connecting to patch source...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 2)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to patch source", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("connect_error: %v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}

	return newSocketLink(ctx, socketIOClient{io: io}, cfg.Event, timeout, func() { io.Disconnect() }), nil
}

func newSocketLink(ctx context.Context, client eventSocket, event string, timeout time.Duration, closeFn func()) *SocketLink {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	l := &SocketLink{client: client, event: event, timeout: timeout, close: closeFn, newID: uuid.NewString}
	logger := ctxlog.FromContext(ctx).With("component", "patchlink", "event", event)

	client.On(event+"-ret", func(data ...any) {
		var head answerHeader
		if err := decodePayload(data, &head); err != nil {
			logger.Warn("Dropping unreadable patch answer", "error", err)
			return
		}
		var resp patchResponse
		if err := decodePayload(data, &resp); err != nil {
			l.settle(logger, head.RequestID, linkResult{err: err})
			return
		}
		if resp.Projects == nil {
			resp.Projects = map[int]graph.PatchRecord{}
		}
		l.settle(logger, head.RequestID, linkResult{patches: resp.Projects})
	})
	client.On(event+"-err", func(data ...any) {
		var head answerHeader
		if err := decodePayload(data, &head); err != nil {
			logger.Warn("Dropping unreadable patch failure", "error", err)
			return
		}
		var failure patchFailure
		if err := decodePayload(data, &failure); err != nil {
			l.settle(logger, head.RequestID, linkResult{err: err})
			return
		}
		l.settle(logger, head.RequestID, linkResult{err: &SourceError{Reason: failure.Error}})
	})
	return l
}

// settle hands a result to the pending request if id is its id. The slot is
// cleared so that a second signal for the same request is dropped.
func (l *SocketLink) settle(logger *slog.Logger, id string, res linkResult) {
	l.pendingMu.Lock()
	p := l.pending
	if p == nil || p.id != id {
		l.pendingMu.Unlock()
		logger.Warn("Dropping patch answer that matches no pending request", "request_id", id)
		return
	}
	l.pending = nil
	l.pendingMu.Unlock()

	p.done <- res
}

// Request performs one handshake. It returns when the source answers, the
// timeout passes, or ctx is cancelled, whichever happens first.
func (l *SocketLink) Request(ctx context.Context, records []graph.RawProjectRecord, key graph.RequestKey) (map[int]graph.PatchRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("component", "patchlink", "event", l.event)

	p := &pendingRequest{id: l.newID(), done: make(chan linkResult, 1)}
	l.pendingMu.Lock()
	l.pending = p
	l.pendingMu.Unlock()
	defer func() {
		l.pendingMu.Lock()
		if l.pending == p {
			l.pending = nil
		}
		l.pendingMu.Unlock()
	}()

	opCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	logger.Debug("Requesting patch data", "key", key.String(), "projects", len(records), "request_id", p.id)
	l.client.Emit(l.event, patchRequest{
		RequestID: p.id,
		CursusID:  key.CursusID,
		CampusID:  key.CampusID,
		Login:     key.Login,
		Projects:  records,
	})

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return nil, fmt.Errorf("patch request aborted: %w", context.Cause(ctx))
		}
		return nil, fmt.Errorf("timed out after %v waiting for event '%s-ret'", l.timeout, l.event)
	case res := <-p.done:
		return res.patches, res.err
	}
}

// Close disconnects from the patch source.
func (l *SocketLink) Close() error {
	if l.close != nil {
		l.close()
	}
	return nil
}

// decodePayload re-encodes the first event argument into target. socket.io
// hands over generic JSON values.
func decodePayload(data []any, target any) error {
	if len(data) == 0 {
		return fmt.Errorf("event carried no payload")
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		return fmt.Errorf("failed to re-encode event payload: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}
	return nil
}
