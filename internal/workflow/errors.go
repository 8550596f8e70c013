package workflow

import (
	"fmt"
	"strings"
)

// ValidationError points at one offending element of a workflow document.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationResult is the outcome of validating a workflow document.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// WorkflowParseError is returned by Parse when the document fails
// validation. Parse never silently accepts an invalid document.
type WorkflowParseError struct {
	Errors []ValidationError
}

func (e *WorkflowParseError) Error() string {
	if len(e.Errors) == 0 {
		return "workflow document is invalid"
	}
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.String()
	}
	return fmt.Sprintf("workflow document is invalid:\n- %s", strings.Join(parts, "\n- "))
}
