// Package testutil provides shared helpers for exercising the engine and
// registry in tests: configurable stub nodes and factories.
package testutil

import (
	"context"

	"github.com/specialistvlad/nodeflow/internal/node"
)

// StubNode is a configurable node implementation for tests.
type StubNode struct {
	Meta node.Metadata

	// ExecuteFn, when set, fully controls the node's behavior.
	ExecuteFn func(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error)

	// Edges is returned when ExecuteFn is nil. Defaults to a bare success
	// edge with an empty payload.
	Edges node.EdgeMap
}

// Metadata implements node.Node.
func (s *StubNode) Metadata() node.Metadata { return s.Meta }

// Execute implements node.Node.
func (s *StubNode) Execute(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
	if s.ExecuteFn != nil {
		return s.ExecuteFn(ctx, ec, config)
	}
	if s.Edges != nil {
		return s.Edges, nil
	}
	return node.SingleEdge(node.EdgeSuccess, nil), nil
}

// Factory returns a node.Factory producing fresh stubs with the given id
// and behavior. Name defaults to the id and version to "1.0.0" so stubs
// always carry valid metadata.
func Factory(id string, fn func(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error)) node.Factory {
	return func() node.Node {
		return &StubNode{
			Meta:      node.Metadata{ID: id, Name: id, Version: "1.0.0"},
			ExecuteFn: fn,
		}
	}
}

// NoopFactory returns a factory for a node that succeeds with an empty
// payload, the smallest node that satisfies the contract.
func NoopFactory(id string) node.Factory {
	return Factory(id, nil)
}

// SuccessFactory returns a factory for a node whose single success edge
// produces the given payload.
func SuccessFactory(id string, payload map[string]any) node.Factory {
	return Factory(id, func(ctx context.Context, ec *node.ExecutionContext, config map[string]any) (node.EdgeMap, error) {
		return node.SingleEdge(node.EdgeSuccess, payload), nil
	})
}
