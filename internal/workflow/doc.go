// Package workflow turns untrusted workflow JSON into a safe, addressable
// execution plan before any execution side effects occur.
//
// A workflow document is an ordered sequence of steps. A step is either a
// bare node-id string or a single-key object mapping a node id to its
// configuration. Config keys suffixed with '?' (e.g. "success?") are edge
// routes: when the node's execution fires the matching edge, control jumps
// to the route's target instead of advancing sequentially. A route target
// is a node id, an inline node/config object, or an array of these
// (alternative candidates).
//
// Validate reports every structural and semantic problem with a
// JSON-pointer-like path so a UI can point at the offending element. Parse
// re-runs validation and flattens the possibly nested edge structure into a
// linear, index-addressable plan the engine can step through without
// further id resolution.
package workflow
