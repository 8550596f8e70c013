package manifest

import "github.com/zclconf/go-cty/cty"

// Node is the format-agnostic representation of a node manifest.
type Node struct {
	// ID is the stable node identifier, taken from the block label.
	ID string

	// Name, Version and Description mirror the registered metadata.
	Name        string
	Version     string
	Description string

	// Inputs and Outputs form the node's declared schema.
	Inputs  map[string]Input
	Outputs map[string]Output

	// Path records which file the manifest was loaded from, for diagnostics.
	Path string
}

// Input declares a single configuration value a node accepts.
type Input struct {
	// Name is taken from the block label, e.g. input "url" {}.
	Name string

	// Type is the value type this input must conform to.
	Type cty.Type

	// Description is optional documentation.
	Description string

	// Default, when non-nil, marks the input optional and supplies the
	// value used when the workflow step omits it.
	Default *cty.Value
}

// Output documents a single value a node's edges may produce.
type Output struct {
	Name        string
	Type        cty.Type
	Description string
}
