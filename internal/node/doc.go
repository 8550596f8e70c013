// Package node defines the contract every workflow node implements.
//
// A node is a single unit of workflow logic. The engine instantiates it
// through the registry, invokes Execute with the step's configuration, and
// inspects the returned EdgeMap to decide which step runs next. Business
// failures travel as an "error" edge in the map; a Go error returned from
// Execute is reserved for truly unrecoverable conditions and fails the run.
package node
