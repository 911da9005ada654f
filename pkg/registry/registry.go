// Package registry provides the immutable tool registry consumed by the
// turn controller. The registry is constructed once during initialization
// from explicit entry lists; unknown or duplicate tool names fail fast at
// startup instead of surfacing as lookup errors mid-conversation.
package registry

import (
	"context"
	"fmt"

	"github.com/scrumhand/scrumhand/pkg/domain"
)

// Handler is the signature for a tool implementation. It never returns an
// error to the caller: failures are carried inside the ToolOutcome and
// serialized to text at the controller boundary.
type Handler func(ctx context.Context, args map[string]any) domain.ToolOutcome

// Entry pairs a tool schema with its implementation.
type Entry struct {
	Tool    domain.Tool
	Handler Handler
}

// Registry is an immutable mapping from tool name to entry.
type Registry struct {
	order   []string
	entries map[string]Entry
}

// New builds a registry from the given entries.
// It fails on empty names, nil handlers and duplicates.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(entries)),
		entries: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		if e.Tool.Name == "" {
			return nil, fmt.Errorf("registry: entry with empty tool name")
		}
		if e.Handler == nil {
			return nil, fmt.Errorf("registry: tool %q has nil handler", e.Tool.Name)
		}
		if _, dup := r.entries[e.Tool.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate tool %q", e.Tool.Name)
		}
		r.order = append(r.order, e.Tool.Name)
		r.entries[e.Tool.Name] = e
	}
	return r, nil
}

// MustNew is New that panics on invalid entries. Intended for wiring code
// where a bad entry list is a programming error.
func MustNew(entries ...Entry) *Registry {
	r, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Tools returns the catalogue in registration order, for model binding and
// prompt building.
func (r *Registry) Tools() []domain.Tool {
	tools := make([]domain.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Subset returns a new registry restricted to the named tools, preserving
// registration order. Unknown names are an error.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.entries[n]; !ok {
			return nil, fmt.Errorf("registry: %w: %s", domain.ErrUnknownTool, n)
		}
		want[n] = true
	}
	sub := &Registry{entries: make(map[string]Entry, len(names))}
	for _, name := range r.order {
		if want[name] {
			sub.order = append(sub.order, name)
			sub.entries[name] = r.entries[name]
		}
	}
	return sub, nil
}

// Dispatch invokes the named tool with the supplied arguments.
//
// A request for an unregistered tool (e.g., a hallucinated name) is not
// fatal: it produces an error outcome the model can react to, matching the
// strings-only contract of the tool boundary.
func (r *Registry) Dispatch(ctx context.Context, call domain.ToolCall) domain.ToolOutcome {
	entry, ok := r.entries[call.Name]
	if !ok {
		return domain.ErrorOutcome(fmt.Errorf("%w: %s", domain.ErrUnknownTool, call.Name))
	}
	return entry.Handler(ctx, call.Args)
}
