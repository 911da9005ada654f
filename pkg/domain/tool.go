package domain

import "fmt"

// Tool describes a callable exposed to the language model.
// Parameters holds a JSON-Schema-shaped description of the arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolOutcome is the internal result of executing a tool handler.
//
// The controller contract is strings only: errors never cross the tool
// boundary as errors. Outcome keeps the real error available internally and
// serializes it at the last moment via Text.
type ToolOutcome struct {
	Content string
	Err     error
}

// TextOutcome wraps a successful tool result.
func TextOutcome(content string) ToolOutcome {
	return ToolOutcome{Content: content}
}

// ErrorOutcome wraps a failed tool execution.
func ErrorOutcome(err error) ToolOutcome {
	return ToolOutcome{Err: err}
}

// Text renders the outcome as the string the model will see.
func (o ToolOutcome) Text() string {
	if o.Err != nil {
		return fmt.Sprintf("Error: %v", o.Err)
	}
	return o.Content
}
