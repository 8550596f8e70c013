// Package registry maintains the authoritative catalogue of node
// implementations and produces instances on demand.
//
// Registrations bind a node id and version to a Go factory, an
// instantiation mode (singleton or transient) and a provenance tag. Nodes
// arrive two ways: compiled modules register their factories
// programmatically through the Module interface, and declarative manifests
// discovered from a directory tree supply the on-disk metadata. After
// startup, ValidateManifests performs a strict parity check between the two
// so the code and the manifests cannot drift apart silently.
//
// The registry is read-mostly and safe for concurrent lookups from many
// in-flight executions. Registering or unregistering nodes while executions
// are in flight is a narrow, documented race that hosts should serialize.
package registry
