// Package engine keeps a multi-page document within its per-page height
// budget.
//
// An Engine owns the reflow state of one host document: the visibility of
// every page, one virtual store per hidden page, the operation queue, the
// analyzer dispatcher and the optional persistence bridge. A reflow run
// repeats the same cycle until nothing moves:
//
//  1. build a snapshot of every page (live geometry or virtual estimate)
//  2. save it, when it differs from the last saved one
//  3. dispatch the overflow and underflow passes over it
//  4. enqueue the reported moves and drain the queue serially
//
// The queue requests the next snapshot when it becomes idle. A run stops at
// a fixed point, when a drain could not apply any move, when an arrangement
// repeats, or after the configured maximum number of cycles.
//
// Mutations observed on the host are coalesced by a Scheduler into one
// reflow run per quiet window.
package engine
