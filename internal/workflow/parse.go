package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Target is a pre-resolved edge route: one or more candidate step indices.
// The base engine follows the first candidate; the rest exist for hosts
// that extend routing.
type Target struct {
	Candidates []int
}

// Step is one executable entry of the flattened plan.
type Step struct {
	// Index is the step's position in ParsedWorkflow.Steps.
	Index int

	// NodeID names the registered node to execute.
	NodeID string

	// Config holds the plain configuration with edge keys stripped and
	// manifest defaults applied.
	Config map[string]any

	// Edges maps an edge name to its pre-resolved route.
	Edges map[string]Target

	// Next is the sequential successor index, or -1 when the step is the
	// end of the document order.
	Next int
}

// ParsedWorkflow is the validated, engine-internal execution plan. It is
// immutable after Parse returns; the engine consumes it without mutating.
type ParsedWorkflow struct {
	ID           string
	Name         string
	Version      string
	InitialState map[string]any
	Steps        []Step
}

// Parser converts validated workflow documents into execution plans.
type Parser struct {
	catalogue Catalogue
	validator *Validator
}

// NewParser creates a parser backed by the given catalogue.
func NewParser(c Catalogue) *Parser {
	return &Parser{catalogue: c, validator: NewValidator(c)}
}

// Parse re-runs validation and flattens the document into an addressable
// plan. An invalid document is rejected with a WorkflowParseError, never
// silently accepted.
func (p *Parser) Parse(def *Definition) (*ParsedWorkflow, error) {
	result := p.validator.Validate(def)
	if !result.Valid {
		return nil, &WorkflowParseError{Errors: result.Errors}
	}

	f := &flattener{catalogue: p.catalogue}

	// First pass: allocate every document-order step so jumps can address
	// forward references, then link sequential successors.
	for _, spec := range def.Workflow {
		f.appendStep(spec.NodeID, spec.Config)
	}
	for i := range f.steps {
		if i+1 < len(def.Workflow) {
			f.steps[i].Next = i + 1
		}
	}

	// Second pass: resolve edge routes, appending inline and synthetic
	// steps as they are encountered.
	for i := range def.Workflow {
		if err := f.resolveEdges(i); err != nil {
			return nil, err
		}
	}

	return &ParsedWorkflow{
		ID:           def.ID,
		Name:         def.Name,
		Version:      def.Version,
		InitialState: def.InitialState,
		Steps:        f.steps,
	}, nil
}

// flattener accumulates the step table while edge structures are unnested.
type flattener struct {
	catalogue Catalogue
	steps     []Step

	// firstByNode records the first document-order step per node id, the
	// address a string jump target resolves to.
	firstByNode map[string]int
}

func (f *flattener) appendStep(nodeID string, config map[string]any) int {
	if f.firstByNode == nil {
		f.firstByNode = make(map[string]int)
	}
	idx := len(f.steps)
	f.steps = append(f.steps, Step{
		Index:  idx,
		NodeID: nodeID,
		Config: config,
		Edges:  make(map[string]Target),
		Next:   -1,
	})
	if _, seen := f.firstByNode[nodeID]; !seen {
		f.firstByNode[nodeID] = idx
	}
	return idx
}

// resolveEdges splits the step's raw config into plain configuration and
// pre-bound edge targets, then applies manifest defaults.
func (f *flattener) resolveEdges(idx int) error {
	raw := f.steps[idx].Config
	plain := make(map[string]any)

	for _, key := range sortedKeys(raw) {
		value := raw[key]
		edge, ok := edgeKey(key)
		if !ok {
			plain[key] = value
			continue
		}

		target, err := f.resolveTarget(value)
		if err != nil {
			return err
		}
		f.steps[idx].Edges[edge] = target
	}

	withDefaults, err := f.applyDefaults(f.steps[idx].NodeID, plain)
	if err != nil {
		return err
	}
	f.steps[idx].Config = withDefaults
	return nil
}

// resolveTarget turns a validated edge value into step indices. String
// targets address the first document-order step for that node id, or a
// synthetic step with empty config when the node never appears top-level.
// Inline objects always become their own private step.
func (f *flattener) resolveTarget(value any) (Target, error) {
	switch target := value.(type) {
	case string:
		if idx, ok := f.firstByNode[target]; ok {
			return Target{Candidates: []int{idx}}, nil
		}
		idx := f.appendStep(target, nil)
		if err := f.resolveEdges(idx); err != nil {
			return Target{}, err
		}
		return Target{Candidates: []int{idx}}, nil

	case map[string]any:
		for nodeID, rawConfig := range target {
			cfg, _ := rawConfig.(map[string]any)
			idx := f.appendStep(nodeID, cfg)
			if err := f.resolveEdges(idx); err != nil {
				return Target{}, err
			}
			return Target{Candidates: []int{idx}}, nil
		}
		return Target{}, fmt.Errorf("inline step object is empty")

	case []any:
		var candidates []int
		for _, elem := range target {
			t, err := f.resolveTarget(elem)
			if err != nil {
				return Target{}, err
			}
			candidates = append(candidates, t.Candidates...)
		}
		return Target{Candidates: candidates}, nil

	default:
		// Unreachable after validation; kept as a guard for callers that
		// bypass Parse.
		return Target{}, fmt.Errorf("unsupported edge target of type %T", value)
	}
}

// applyDefaults fills absent optional inputs from the node's manifest.
func (f *flattener) applyDefaults(nodeID string, plain map[string]any) (map[string]any, error) {
	mf := f.catalogue.Manifest(nodeID)
	if mf == nil {
		if len(plain) == 0 {
			return nil, nil
		}
		return plain, nil
	}

	for name, in := range mf.Inputs {
		if in.Default == nil {
			continue
		}
		if _, present := plain[name]; present {
			continue
		}
		value, err := ctyValueToGo(*in.Default)
		if err != nil {
			return nil, fmt.Errorf("failed to apply default for input '%s' of node '%s': %w", name, nodeID, err)
		}
		plain[name] = value
	}

	if len(plain) == 0 {
		return nil, nil
	}
	return plain, nil
}

// ctyValueToGo converts a cty value into the plain Go shape config maps
// use, going through JSON to reuse cty's own encoding rules.
func ctyValueToGo(val cty.Value) (any, error) {
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
