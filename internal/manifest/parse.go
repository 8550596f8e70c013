package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nodeflow/internal/ctxlog"
)

// nodeRootSchema is the top-level structure of a manifest file: one or more
// 'node' blocks.
type nodeRootSchema struct {
	Nodes []*hclNode `hcl:"node,block"`
}

// hclNode represents a single 'node' block for decoding purposes.
type hclNode struct {
	ID   string   `hcl:"id,label"`
	Body hcl.Body `hcl:",remain"`
}

// nodeBodySchema defines the body of a 'node' block.
var nodeBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name", Required: true},
		{Name: "version", Required: true},
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

// ParseFile decodes every 'node' block found in the HCL file at path.
func ParseFile(ctx context.Context, path string) ([]*Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing node manifest file.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	root := &nodeRootSchema{}
	if diags := gohcl.DecodeBody(hclFile.Body, nil, root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	nodes := make([]*Node, 0, len(root.Nodes))
	for _, raw := range root.Nodes {
		n, diags := decodeNode(raw, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid node manifest '%s' in %s: %w", raw.ID, path, diags)
		}
		nodes = append(nodes, n)
	}

	logger.Debug("Manifest file parsed.", "path", path, "nodes", len(nodes))
	return nodes, nil
}

func decodeNode(raw *hclNode, path string) (*Node, hcl.Diagnostics) {
	content, diags := raw.Body.Content(nodeBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	n := &Node{
		ID:      raw.ID,
		Inputs:  make(map[string]Input),
		Outputs: make(map[string]Output),
		Path:    path,
	}

	diags = append(diags, decodeStringAttr(content, "name", &n.Name)...)
	diags = append(diags, decodeStringAttr(content, "version", &n.Version)...)
	diags = append(diags, decodeStringAttr(content, "description", &n.Description)...)

	inputs, inputDiags := decodeInputs(content.Blocks.OfType("input"))
	diags = append(diags, inputDiags...)
	n.Inputs = inputs

	outputs, outputDiags := decodeOutputs(content.Blocks.OfType("output"))
	diags = append(diags, outputDiags...)
	n.Outputs = outputs

	return n, diags
}

func decodeStringAttr(content *hcl.BodyContent, name string, into *string) hcl.Diagnostics {
	attr, exists := content.Attributes[name]
	if !exists {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, into)
}

// ioBodySchema is shared by 'input' and 'output' blocks.
var ioBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
	},
}

func decodeInputs(blocks hcl.Blocks) (map[string]Input, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	inputs := make(map[string]Input)

	for _, block := range blocks {
		name := block.Labels[0]
		if _, exists := inputs[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate input definition",
				Detail:   fmt.Sprintf("An input named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}

		content, contentDiags := block.Body.Content(ioBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			missing := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all input blocks.",
				Subject:  &missing,
			})
			continue
		}

		ctyType, typeDiags := typeFromExpr(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		in := Input{Name: name, Type: ctyType}

		if descAttr, exists := content.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(descAttr.Expr, nil, &in.Description)...)
		}

		if defAttr, exists := content.Attributes["default"]; exists {
			// Defaults must be literal values, hence the nil eval context.
			val, valDiags := defAttr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			if !ctyType.Equals(val.Type()) && !ctyType.Equals(cty.DynamicPseudoType) {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value type",
					Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its declared type '%s'.", name, ctyType.FriendlyName()),
					Subject:  defAttr.Expr.Range().Ptr(),
				})
				continue
			}
			in.Default = &val
		}

		inputs[name] = in
	}

	return inputs, diags
}

func decodeOutputs(blocks hcl.Blocks) (map[string]Output, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	outputs := make(map[string]Output)

	for _, block := range blocks {
		name := block.Labels[0]
		if _, exists := outputs[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate output definition",
				Detail:   fmt.Sprintf("An output named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}

		content, contentDiags := block.Body.Content(ioBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		out := Output{Name: name, Type: cty.DynamicPseudoType}

		if typeAttr, exists := content.Attributes["type"]; exists {
			ctyType, typeDiags := typeFromExpr(typeAttr.Expr)
			diags = append(diags, typeDiags...)
			if typeDiags.HasErrors() {
				continue
			}
			out.Type = ctyType
		}

		if descAttr, exists := content.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(descAttr.Expr, nil, &out.Description)...)
		}

		outputs[name] = out
	}

	return outputs, diags
}
