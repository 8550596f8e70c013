// Package state owns the mutable key/value bag of every live execution.
//
// The Manager is the single source of truth for per-execution data and the
// sole authority for advisory key locking. Each execution id maps to an
// isolated bag; there is no shared mutable data across execution ids, which
// is what allows many executions to run concurrently against one Manager.
//
// Bags are ephemeral. The engine creates one when an execution starts and
// destroys it on every terminal path, releasing outstanding locks and
// snapshots so a long-lived process does not accumulate state.
package state
