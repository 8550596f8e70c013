package workflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/specialistvlad/nodeflow/internal/manifest"
)

// Catalogue is the view of the node registry the validator needs.
type Catalogue interface {
	Has(id string) bool
	Manifest(id string) *manifest.Node
}

// Validator checks workflow documents against the node catalogue.
type Validator struct {
	catalogue Catalogue
}

// NewValidator creates a validator backed by the given catalogue.
func NewValidator(c Catalogue) *Validator {
	return &Validator{catalogue: c}
}

// Validate performs structural and semantic validation of the document and
// reports every problem found, each with a JSON-pointer-like path.
func (v *Validator) Validate(def *Definition) ValidationResult {
	var errs []ValidationError
	add := func(path, format string, args ...any) {
		errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if def == nil {
		return ValidationResult{Valid: false, Errors: []ValidationError{{Path: "/", Message: "workflow document is empty"}}}
	}

	if def.ID == "" {
		add("/id", "required field is missing or empty")
	}
	if def.Name == "" {
		add("/name", "required field is missing or empty")
	}
	if def.Version == "" {
		add("/version", "required field is missing or empty")
	}
	if len(def.Workflow) == 0 {
		add("/workflow", "workflow must contain at least one step")
	}

	for i, step := range def.Workflow {
		stepPath := fmt.Sprintf("/workflow/%d", i)
		if step.invalid != "" {
			add(stepPath, "%s", step.invalid)
			continue
		}
		if step.NodeID == "" {
			add(stepPath, "step node id must not be empty")
			continue
		}
		errs = append(errs, v.validateStep(stepPath, step.NodeID, step.Config)...)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// validateStep checks one node reference plus its config object, recursing
// into nested edge targets.
func (v *Validator) validateStep(path, nodeID string, config map[string]any) []ValidationError {
	var errs []ValidationError

	if !v.catalogue.Has(nodeID) {
		return []ValidationError{{Path: path, Message: fmt.Sprintf("unknown node id '%s'", nodeID)}}
	}

	plain := make(map[string]any)
	for _, key := range sortedKeys(config) {
		value := config[key]
		if edge, ok := edgeKey(key); ok {
			edgePath := path + "/" + nodeID + "/" + key
			if edge == "" {
				errs = append(errs, ValidationError{Path: edgePath, Message: "edge key must name an edge before the '?' suffix"})
				continue
			}
			errs = append(errs, v.validateEdgeTarget(edgePath, value)...)
			continue
		}
		plain[key] = value
	}

	errs = append(errs, v.validateConfigValues(path+"/"+nodeID, nodeID, plain)...)
	return errs
}

// validateEdgeTarget checks one edge route value: a node id string, a
// single-key inline node object, or an array of these.
func (v *Validator) validateEdgeTarget(path string, value any) []ValidationError {
	switch target := value.(type) {
	case string:
		if !v.catalogue.Has(target) {
			return []ValidationError{{Path: path, Message: fmt.Sprintf("unknown node id '%s'", target)}}
		}
		return nil

	case map[string]any:
		return v.validateInlineStep(path, target)

	case []any:
		var errs []ValidationError
		if len(target) == 0 {
			return []ValidationError{{Path: path, Message: "fan-out array must not be empty"}}
		}
		for i, elem := range target {
			elemPath := fmt.Sprintf("%s/%d", path, i)
			switch elem.(type) {
			case string, map[string]any:
				errs = append(errs, v.validateEdgeTarget(elemPath, elem)...)
			default:
				errs = append(errs, ValidationError{Path: elemPath, Message: "fan-out element must be a node id string or a single-key node/config object"})
			}
		}
		return errs

	default:
		return []ValidationError{{Path: path, Message: "edge target must be a node id string, a single-key node/config object, or an array of such"}}
	}
}

// validateInlineStep checks a nested {nodeID: config} object.
func (v *Validator) validateInlineStep(path string, obj map[string]any) []ValidationError {
	if len(obj) != 1 {
		return []ValidationError{{Path: path, Message: fmt.Sprintf("inline step must have exactly one node id key, got %d keys", len(obj))}}
	}
	for nodeID, rawConfig := range obj {
		switch cfg := rawConfig.(type) {
		case nil:
			return v.validateStep(path, nodeID, nil)
		case map[string]any:
			return v.validateStep(path, nodeID, cfg)
		default:
			return []ValidationError{{Path: path, Message: fmt.Sprintf("config for node '%s' must be an object", nodeID)}}
		}
	}
	return nil
}

// validateConfigValues checks the plain (non-edge) config entries against
// the node's manifest, when one was discovered. Nodes without a manifest
// skip static checking entirely.
func (v *Validator) validateConfigValues(path, nodeID string, plain map[string]any) []ValidationError {
	mf := v.catalogue.Manifest(nodeID)
	if mf == nil || len(mf.Inputs) == 0 {
		return nil
	}

	var errs []ValidationError
	for _, key := range sortedKeys(plain) {
		in, declared := mf.Inputs[key]
		if !declared {
			errs = append(errs, ValidationError{
				Path:    path + "/" + key,
				Message: fmt.Sprintf("input '%s' is not declared in the manifest for node '%s'", key, nodeID),
			})
			continue
		}
		if in.Type.Equals(cty.DynamicPseudoType) {
			continue
		}
		if err := checkValueType(plain[key], in.Type); err != nil {
			errs = append(errs, ValidationError{
				Path:    path + "/" + key,
				Message: fmt.Sprintf("value is not compatible with declared type '%s': %v", in.Type.FriendlyName(), err),
			})
		}
	}

	for _, name := range sortedInputNames(mf) {
		in := mf.Inputs[name]
		if in.Default != nil {
			continue
		}
		if _, present := plain[name]; !present {
			errs = append(errs, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("required input '%s' is missing for node '%s'", name, nodeID),
			})
		}
	}

	return errs
}

// checkValueType verifies that a decoded JSON value can be converted to the
// declared cty type.
func checkValueType(value any, want cty.Type) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	implied, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return err
	}
	got, err := ctyjson.Unmarshal(raw, implied)
	if err != nil {
		return err
	}
	_, err = convert.Convert(got, want)
	return err
}

// edgeKey reports whether the config key is an edge route and returns the
// edge name without the '?' suffix.
func edgeKey(key string) (string, bool) {
	if strings.HasSuffix(key, "?") {
		return strings.TrimSuffix(key, "?"), true
	}
	return "", false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedInputNames(mf *manifest.Node) []string {
	names := make([]string, 0, len(mf.Inputs))
	for name := range mf.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
