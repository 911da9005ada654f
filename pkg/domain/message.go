package domain

import "github.com/google/uuid"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a request emitted by the assistant to invoke a named tool.
// Ideally compatible with OpenAI/Anthropic tool call schemas.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Message is one entry in a conversation transcript.
// Messages are immutable once appended; ordering is total per conversation.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls holds pending tool invocations (assistant messages only).
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-result message back to the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewUserMessage builds a user message with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

// NewAssistantMessage builds a plain-text assistant message with a fresh ID.
func NewAssistantMessage(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant, Content: content}
}

// NewToolMessage builds a tool-result message bound to a tool call ID.
func NewToolMessage(callID, content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleTool, Content: content, ToolCallID: callID}
}
