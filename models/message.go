package models

import (
	"encoding/json"
	"time"
)

// Message roles. The set is closed: the transcript only ever stores these.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCallRequest is the structured form of an assistant message that asks
// for a tool to run. Arguments holds the raw JSON exactly as the LLM
// produced it.
type ToolCallRequest struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is a single transcript entry. Content and ToolCall are a tagged
// pair: an assistant tool-call request carries ToolCall and an empty
// Content, everything else carries Content only. Messages are created once
// and never mutated.
type Message struct {
	ID        int              `json:"id"`
	SessionID int              `json:"session_id"`
	Sequence  int              `json:"sequence"`
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolName  string           `json:"tool_name,omitempty"`
	ToolCall  *ToolCallRequest `json:"tool_call,omitempty"`
	Visible   bool             `json:"visible"`
	CreatedAt time.Time        `json:"created_at"`
}

// DefaultVisibility implements the transcript rule: only user text and
// plain assistant answers are shown to the human. System preamble, tool
// call requests and tool results stay hidden.
func DefaultVisibility(role, toolName string) bool {
	return (role == RoleUser || role == RoleAssistant) && toolName == ""
}

// EncodeStoredContent returns the text persisted in the content column:
// the serialized tool call for tool-call requests, the plain text
// otherwise.
func (m *Message) EncodeStoredContent() string {
	if m.ToolCall == nil {
		return m.Content
	}
	data, err := json.Marshal(m.ToolCall)
	if err != nil {
		return m.Content
	}
	return string(data)
}

// DecodeStoredContent rebuilds the tagged content from a stored row. A
// malformed tool-call payload degrades to plain assistant text instead of
// failing the load.
func (m *Message) DecodeStoredContent(stored string) {
	if m.Role != RoleAssistant || m.ToolName == "" {
		m.Content = stored
		return
	}
	var call ToolCallRequest
	if err := json.Unmarshal([]byte(stored), &call); err != nil || call.Name == "" {
		m.Content = stored
		return
	}
	m.ToolCall = &call
}

type Session struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
