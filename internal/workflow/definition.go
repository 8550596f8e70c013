package workflow

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Definition is the raw, untrusted workflow document as supplied by the UI
// or API layer.
type Definition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	InitialState map[string]any `json:"initialState,omitempty"`
	Workflow     []StepSpec     `json:"workflow"`
}

// StepSpec is one entry of the workflow array: a bare node-id string or a
// single-key object mapping a node id to a config object.
type StepSpec struct {
	NodeID string
	Config map[string]any

	// invalid records a shape problem found during decoding. Decoding is
	// deliberately lenient so the validator can report the problem with a
	// proper path instead of the whole document failing to unmarshal.
	invalid string
}

// UnmarshalJSON accepts either form of a step. Shape problems are recorded,
// not returned, so validation can surface them with paths.
func (s *StepSpec) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		s.NodeID = id
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		s.invalid = "step must be a node id string or a single-key node/config object"
		return nil
	}
	if len(obj) != 1 {
		s.invalid = fmt.Sprintf("step object must have exactly one node id key, got %d keys", len(obj))
		return nil
	}

	for nodeID, rawConfig := range obj {
		s.NodeID = nodeID
		switch cfg := rawConfig.(type) {
		case nil:
			s.Config = nil
		case map[string]any:
			s.Config = cfg
		default:
			s.invalid = fmt.Sprintf("config for node '%s' must be an object", nodeID)
		}
	}
	return nil
}

// MarshalJSON writes the step back in its canonical document form.
func (s StepSpec) MarshalJSON() ([]byte, error) {
	if s.Config == nil {
		return json.Marshal(s.NodeID)
	}
	return json.Marshal(map[string]any{s.NodeID: s.Config})
}

// Decode reads a workflow definition from r. Only malformed JSON fails
// here; structural problems inside a well-formed document are left for
// Validate to report.
func Decode(r io.Reader) (*Definition, error) {
	var def Definition
	dec := json.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode workflow document: %w", err)
	}
	return &def, nil
}

// Load reads a workflow definition from a file.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
