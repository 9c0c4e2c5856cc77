// Package graph defines the data model shared by every stage of the graph
// synchronization pipeline: the identity of a dataset, the raw records as
// they arrive from the upstream backend, the supplemental patch records, and
// the normalized node schema consumed by the rendering surface.
//
// # Record Lifecycle
//
// A single fetch moves data through three shapes:
//
//	RawProjectRecord ──(patchlink.Apply)──▶ RawProjectRecord ──(translate)──▶ ProjectNode
//	                       ▲
//	                 PatchRecord
//
//   - **RawProjectRecord** and **PatchRecord** are transient and never leave
//     a fetch cycle.
//   - **ProjectNode** is the stable schema. It is what the cache stores and
//     what the message bus sends.
//
// # Coordinate Space
//
// Upstream coordinates live in a pixel space whose origin sits at
// (Offset, Offset). Normalized nodes and edges are shifted so that origin
// becomes (0, 0). See Transform.
package graph
