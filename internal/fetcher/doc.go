// Package fetcher orchestrates one graph load: it serves the cached graph
// immediately and computes a fresh one in the background.
//
// # Why Fetcher Exists
//
// A load touches every other stage of the pipeline. The fetcher owns the
// ordering between them and the single "in flight" slot:
//
//	Load ──▶ cache (sync) ──▶ upstream ──▶ patch link ──▶ translate ──▶ cache write ──▶ resolve
//
// # The In-Flight Slot
//
// Only one load may be in flight per Fetcher, whatever its key. The surface
// creates one Fetcher per connection, so loads of different clients never
// supersede each other. Every Load takes the slot and cancels the previous
// holder with ErrSuperseded as the context cause. Cancellation flows through
// the context into the upstream request and the patch handshake.
//
// Before it writes the cache a load re-checks, under the fetcher's mutex,
// that it still owns the slot and gives it up in the same critical section.
// A load that lost the slot never writes the cache and always resolves with
// ErrSuperseded, so callers can tell supersession from genuine failures.
package fetcher
