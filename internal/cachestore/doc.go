// Package cachestore keeps the last successfully translated graph for each
// request key in one of two key-value scopes.
//
// # Scopes
//
//   - **Persistent:** used when the viewer looks at their own graph. Backed by
//     Redis in production so the entry survives restarts.
//   - **Ephemeral:** used for every other login, and whenever the viewer is
//     unknown. Backed by process memory.
//
// The scope is chosen once per load by Selector.For and never re-evaluated
// while that load is in flight.
//
// # Failure Semantics
//
// Get never returns an error. A backend failure or a stored value that does
// not parse as a JSON array of graph.ProjectNode is logged at warning level
// and reported as a miss. Set overwrites unconditionally.
package cachestore
