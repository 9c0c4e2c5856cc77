package cachestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
)

// Backend is a raw string key-value scope.
type Backend interface {
	// Load returns the stored value and whether it exists.
	Load(ctx context.Context, key string) (string, bool, error)
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key, value string) error
}

// Scope names one of the two storage scopes.
type Scope int

const (
	ScopeEphemeral Scope = iota
	ScopePersistent
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopePersistent:
		return "persistent"
	case ScopeEphemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Store reads and writes cache entries in a single scope.
type Store struct {
	scope   Scope
	backend Backend
}

// NewStore binds a backend to a scope.
func NewStore(scope Scope, backend Backend) *Store {
	return &Store{scope: scope, backend: backend}
}

// Scope reports which scope the store serves.
func (s *Store) Scope() Scope {
	return s.scope
}

// Get returns the cached nodes for key. Any failure is logged and reported
// as absent.
func (s *Store) Get(ctx context.Context, key graph.RequestKey) ([]graph.ProjectNode, bool) {
	logger := ctxlog.FromContext(ctx).With("scope", s.scope.String(), "cache_key", key.CacheKey())

	raw, ok, err := s.backend.Load(ctx, key.CacheKey())
	if err != nil {
		logger.Warn("Could not read cached graph data", "error", err)
		return nil, false
	}
	if !ok {
		logger.Debug("No cached graph data")
		return nil, false
	}

	var nodes []graph.ProjectNode
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		logger.Warn("Could not parse cached graph data, ignoring it", "error", err)
		return nil, false
	}
	if nodes == nil {
		// "null" decodes without error but is not an array.
		logger.Warn("Cached graph data is not an array, ignoring it")
		return nil, false
	}

	logger.Debug("Using cached graph data", "projects", len(nodes))
	return nodes, true
}

// Set serializes nodes and stores them under key.
func (s *Store) Set(ctx context.Context, key graph.RequestKey, nodes []graph.ProjectNode) error {
	if nodes == nil {
		nodes = []graph.ProjectNode{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal graph data: %w", err)
	}
	if err := s.backend.Save(ctx, key.CacheKey(), string(data)); err != nil {
		return fmt.Errorf("failed to store graph data in %s scope: %w", s.scope, err)
	}
	return nil
}
