// Package engine drives a parsed workflow to completion.
//
// One Execute call is one execution: an isolated state bag keyed by a
// generated execution id, a cursor over the parsed step sequence, and a
// trace of every step taken. The engine resolves the current step's node
// through the registry, invokes it, picks exactly one fired edge from the
// returned edge map, merges the edge's payload into state and advances the
// cursor along the resolved route. Hook events fire at every lifecycle
// point.
//
// Two safety limits bound every run: a hard iteration ceiling defends
// against author-introduced cycles, and a wall-clock timeout bounds total
// execution time independent of iteration count. Whatever the exit path,
// the execution's state is destroyed before Execute returns.
package engine
