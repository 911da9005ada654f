// Package tools binds the JIRA and Azure DevOps clients into the tool
// registry consumed by the turn controller, and defines the assistants
// that pair a guidance prompt with a toolset.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/scrumhand/scrumhand/pkg/domain"
)

// decodeArgs maps the loosely typed arguments from a model tool call onto
// a typed argument struct. Numbers arrive as float64 from JSON, so weakly
// typed decoding is required.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("tools: build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("tools: invalid arguments: %w", err)
	}
	return nil
}

// jsonOutcome renders an API response map as an indented JSON payload for
// the model.
func jsonOutcome(v map[string]any) domain.ToolOutcome {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.ErrorOutcome(fmt.Errorf("tools: encode result: %w", err))
	}
	return domain.TextOutcome(string(payload))
}

// outcome folds the (response, error) pair of a client call into a single
// tool outcome.
func outcome(resp map[string]any, err error) domain.ToolOutcome {
	if err != nil {
		return domain.ErrorOutcome(err)
	}
	return jsonOutcome(resp)
}

// objectSchema builds the JSON-Schema parameter description for a tool.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
