package llm

import "context"

// Turn is one entry of the replayable conversation sent to the provider.
// Assistant tool-call turns set ToolName, ToolCallID and ToolArgs; tool
// output turns set ToolName, ToolCallID and Content; everything else is
// Role + Content.
type Turn struct {
	Role       string
	Content    string
	ToolName   string
	ToolCallID string
	ToolArgs   string
}

// ToolSpec is a provider-agnostic tool definition. Parameters is a JSON
// schema object ({"type": "object", "properties": ..., "required": ...}).
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ToolCallRequest struct {
	Name      string
	Arguments string
}

// Reply is exactly one of a final text answer or a single tool-call
// request. The providers used here return at most one tool call per
// reply; adapters take the first and drop the rest.
type Reply struct {
	Text     string
	ToolCall *ToolCallRequest
}

type Client interface {
	Chat(ctx context.Context, turns []Turn, tools []ToolSpec, temperature float64) (*Reply, error)
}
