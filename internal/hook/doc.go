// Package hook is a typed, ordered, fault-isolated pub/sub registry for
// engine lifecycle events.
//
// The engine triggers events at well-defined points of a run; handlers are
// awaited sequentially in registration order. Each handler runs inside its
// own fault boundary: an error (or panic) is logged and counted but never
// stops the remaining handlers and never aborts the workflow. External
// consumers, such as the socket.io broadcaster, attach here as ordinary
// handlers.
package hook
