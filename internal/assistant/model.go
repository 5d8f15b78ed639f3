package assistant

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// Message is one entry of the transcript sent to the model. Assistant
// messages may carry tool calls; tool messages carry the result for the call
// identified by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Reply is one model turn: free text, tool calls, or both.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolSpec describes a tool the model may call. Parameters is a JSON Schema
// object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Model is a chat completion backend. Implementations translate the neutral
// transcript into their provider's wire format; the loop never imports a
// provider SDK directly.
type Model interface {
	Complete(ctx context.Context, system string, transcript []Message, tools []ToolSpec) (Reply, error)
}
