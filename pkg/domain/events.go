package domain

import (
	"context"
	"time"
)

// EventType defines the category of a controller event.
type EventType string

const (
	EventPhaseEnter    EventType = "phase_enter"
	EventToolCall      EventType = "tool_call"
	EventToolReturn    EventType = "tool_return"
	EventSafetyVerdict EventType = "safety_verdict"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// PhaseEvent marks the controller entering a state-machine phase.
type PhaseEvent struct {
	EventBase
	Phase string `json:"phase"`
}

// ToolEvent represents a tool dispatch or its return.
type ToolEvent struct {
	EventBase
	ToolName string        `json:"tool_name"`
	CallID   string        `json:"call_id"`
	IsError  bool          `json:"is_error,omitempty"`
	Elapsed  time.Duration `json:"elapsed,omitempty"`
}

// SafetyEvent carries the outcome of a classifier check.
type SafetyEvent struct {
	EventBase
	Role    Role          `json:"role"`
	Verdict SafetyVerdict `json:"verdict"`
}

// LifecycleHooks defines callbacks for controller observability.
// Nil members are skipped.
type LifecycleHooks struct {
	OnPhaseEnter    func(context.Context, *PhaseEvent)
	OnToolCall      func(context.Context, *ToolEvent)
	OnToolReturn    func(context.Context, *ToolEvent)
	OnSafetyVerdict func(context.Context, *SafetyEvent)
}
