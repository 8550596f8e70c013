// Package app is the composition root: it wires the logger, registry,
// state manager, hook manager, engine and runner into a ready application
// and drives workflow runs end to end.
package app
