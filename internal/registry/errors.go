package registry

import "fmt"

// NodeRegistrationError reports invalid or conflicting metadata at
// registration time. Callers can fix the node and retry.
type NodeRegistrationError struct {
	NodeID string
	Reason string
}

func (e *NodeRegistrationError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("node registration failed: %s", e.Reason)
	}
	return fmt.Sprintf("registration of node '%s' failed: %s", e.NodeID, e.Reason)
}

// NodeNotFoundError reports a lookup of an unregistered node id.
type NodeNotFoundError struct {
	NodeID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node '%s' is not registered", e.NodeID)
}
