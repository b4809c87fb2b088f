package models

import "testing"

func TestStoredContentRoundTrip(t *testing.T) {
	msg := &Message{
		Role:     RoleAssistant,
		ToolName: "get_ventas",
		ToolCall: &ToolCallRequest{Name: "get_ventas", Arguments: `{"periodo":"mes_actual"}`},
	}

	stored := msg.EncodeStoredContent()

	decoded := &Message{Role: RoleAssistant, ToolName: "get_ventas"}
	decoded.DecodeStoredContent(stored)

	if decoded.ToolCall == nil {
		t.Fatal("expected decoded tool call")
	}
	if decoded.ToolCall.Name != "get_ventas" || decoded.ToolCall.Arguments != `{"periodo":"mes_actual"}` {
		t.Errorf("round trip lost data: %+v", decoded.ToolCall)
	}
}

func TestDecodeStoredContentDegradesToText(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"malformed json", `{"name": `},
		{"missing tool name", `{"arguments":"{}"}`},
		{"plain text", "just a sentence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Role: RoleAssistant, ToolName: "get_ventas"}
			msg.DecodeStoredContent(tt.stored)

			if msg.ToolCall != nil {
				t.Errorf("expected degrade to text, got tool call %+v", msg.ToolCall)
			}
			if msg.Content != tt.stored {
				t.Errorf("content = %q, want %q", msg.Content, tt.stored)
			}
		})
	}
}

func TestToolResultFlags(t *testing.T) {
	err := ErrorResult("Funcion 'foo' no disponible")
	if !err.IsError() || err.IsWarning() {
		t.Errorf("unexpected flags on error result: %v", err)
	}

	warn := WarningResult(120, map[string]any{"categoria": "alimentos"}, "Hay 120 productos.")
	if !warn.IsWarning() || warn.IsError() {
		t.Errorf("unexpected flags on warning result: %v", warn)
	}
	if warn["cantidad"] != 120 {
		t.Errorf("warning must carry the count, got %v", warn["cantidad"])
	}

	data := ToolResult{"ids": []int{1}, "message": "ok"}
	if data.IsError() || data.IsWarning() {
		t.Errorf("unexpected flags on data result: %v", data)
	}
}
