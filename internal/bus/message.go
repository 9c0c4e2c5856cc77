package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Type is the discriminator carried by every frame.
type Type string

const (
	TypeInitData         Type = "init_data"
	TypeGraphData        Type = "graph_data"
	TypeProjectLinkClick Type = "project_link_click"
	TypeError            Type = "error"
	TypeWarning          Type = "warning"
	TypeNavigate         Type = "navigate"
)

// RankInProgress is the only rank state the surface is given.
const RankInProgress = "in_progress"

// rankCount is the number of rank rings drawn by the surface.
const rankCount = 6

// UnknownTypeError is returned by Decode for frames whose type is not an
// inbound message.
type UnknownTypeError struct {
	Type Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", string(e.Type))
}

// ErrMalformed wraps frames that are not valid messages.
var ErrMalformed = errors.New("malformed message")

// Inbound is a message sent by the surface.
type Inbound interface {
	Accept(ctx context.Context, h InboundHandler)
}

// InboundHandler has one method per inbound variant.
type InboundHandler interface {
	HandleGraphDataRequest(ctx context.Context, msg GraphDataRequest)
	HandleProjectLinkClick(ctx context.Context, msg ProjectLinkClick)
	HandleSurfaceError(ctx context.Context, msg SurfaceError)
	HandleSurfaceWarning(ctx context.Context, msg SurfaceWarning)
}

// Outbound is a message sent to the surface or the page shell.
type Outbound interface {
	MessageType() Type
	frame() any
}

// GraphDataRequest asks for the graph of one cursus on one campus.
type GraphDataRequest struct {
	CursusID int `json:"cursus_id"`
	CampusID int `json:"campus_id"`
}

func (m GraphDataRequest) Accept(ctx context.Context, h InboundHandler) {
	h.HandleGraphDataRequest(ctx, m)
}

// ProjectLinkClick asks the host to navigate to a project page.
type ProjectLinkClick struct {
	Href string `json:"href"`
}

func (m ProjectLinkClick) Accept(ctx context.Context, h InboundHandler) {
	h.HandleProjectLinkClick(ctx, m)
}

// SurfaceError is an error reported by the surface. It is only logged.
type SurfaceError struct {
	Message string `json:"message"`
}

func (m SurfaceError) Accept(ctx context.Context, h InboundHandler) {
	h.HandleSurfaceError(ctx, m)
}

// SurfaceWarning is a warning reported by the surface. It is only logged.
type SurfaceWarning struct {
	Message string `json:"message"`
}

func (m SurfaceWarning) Accept(ctx context.Context, h InboundHandler) {
	h.HandleSurfaceWarning(ctx, m)
}

// InitData tells the surface which cursuses and campuses it may request.
type InitData struct {
	Cursuses []graph.Option `json:"cursusList"`
	Campuses []graph.Option `json:"campusList"`
}

func (InitData) MessageType() Type { return TypeInitData }

func (m InitData) frame() any {
	if m.Cursuses == nil {
		m.Cursuses = []graph.Option{}
	}
	if m.Campuses == nil {
		m.Campuses = []graph.Option{}
	}
	return struct {
		Type Type `json:"type"`
		InitData
	}{TypeInitData, m}
}

// Graph is the dataset carried by a GraphDataResponse.
type Graph struct {
	Ranks    []string            `json:"ranks"`
	Projects []graph.ProjectNode `json:"projects"`
}

// GraphDataResponse delivers a graph to the surface.
type GraphDataResponse struct {
	Graph Graph `json:"graph"`
}

// NewGraphDataResponse wraps projects with the fixed rank list.
func NewGraphDataResponse(projects []graph.ProjectNode) GraphDataResponse {
	ranks := make([]string, rankCount)
	for i := range ranks {
		ranks[i] = RankInProgress
	}
	if projects == nil {
		projects = []graph.ProjectNode{}
	}
	return GraphDataResponse{Graph: Graph{Ranks: ranks, Projects: projects}}
}

func (GraphDataResponse) MessageType() Type { return TypeGraphData }

func (m GraphDataResponse) frame() any {
	return struct {
		Type Type `json:"type"`
		GraphDataResponse
	}{TypeGraphData, m}
}

// Navigate tells the page shell to load href.
type Navigate struct {
	Href string `json:"href"`
}

func (Navigate) MessageType() Type { return TypeNavigate }

func (m Navigate) frame() any {
	return struct {
		Type Type `json:"type"`
		Navigate
	}{TypeNavigate, m}
}

// Encode serializes an outbound message into a tagged frame.
func Encode(msg Outbound) ([]byte, error) {
	data, err := json.Marshal(msg.frame())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", msg.MessageType(), err)
	}
	return data, nil
}

// Decode parses a frame sent by the surface.
func Decode(data []byte) (Inbound, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch head.Type {
	case TypeGraphData:
		var raw struct {
			CursusID *int `json:"cursus_id"`
			CampusID *int `json:"campus_id"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: graph_data: %w", ErrMalformed, err)
		}
		if raw.CursusID == nil || raw.CampusID == nil {
			return nil, fmt.Errorf("%w: graph_data requires cursus_id and campus_id", ErrMalformed)
		}
		return GraphDataRequest{CursusID: *raw.CursusID, CampusID: *raw.CampusID}, nil
	case TypeProjectLinkClick:
		var msg ProjectLinkClick
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: project_link_click: %w", ErrMalformed, err)
		}
		if msg.Href == "" {
			return nil, fmt.Errorf("%w: project_link_click requires href", ErrMalformed)
		}
		return msg, nil
	case TypeError:
		var msg SurfaceError
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: error: %w", ErrMalformed, err)
		}
		return msg, nil
	case TypeWarning:
		var msg SurfaceWarning
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: warning: %w", ErrMalformed, err)
		}
		return msg, nil
	default:
		return nil, &UnknownTypeError{Type: head.Type}
	}
}
