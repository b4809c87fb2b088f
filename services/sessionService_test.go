package services

import (
	"testing"

	"erpchat/db"
	"erpchat/models"
)

func newTestSessionService(t *testing.T) (*SessionService, int) {
	t.Helper()
	service := NewSessionService(db.NewMemorySessionRepository())
	session, err := service.NewSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return service, session.ID
}

func TestAppendMessageAssignsGaplessSequence(t *testing.T) {
	service, sessionID := newTestSessionService(t)

	if _, err := service.AppendMessage(sessionID, models.RoleSystem, "preamble", ""); err != nil {
		t.Fatalf("failed to append system message: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleUser, "hola", ""); err != nil {
		t.Fatalf("failed to append user message: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleAssistant, "hola!", ""); err != nil {
		t.Fatalf("failed to append assistant message: %v", err)
	}

	turns, err := service.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}

	messages, err := service.VisibleMessages(sessionID)
	if err != nil {
		t.Fatalf("failed to list visible messages: %v", err)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Sequence <= messages[i-1].Sequence {
			t.Errorf("sequence not strictly increasing: %d then %d", messages[i-1].Sequence, messages[i].Sequence)
		}
	}
}

func TestDefaultVisibility(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		toolName string
		expected bool
	}{
		{"user message", models.RoleUser, "", true},
		{"assistant answer", models.RoleAssistant, "", true},
		{"assistant tool call", models.RoleAssistant, "get_productos", false},
		{"tool result", models.RoleTool, "get_productos", false},
		{"system preamble", models.RoleSystem, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.DefaultVisibility(tt.role, tt.toolName); got != tt.expected {
				t.Errorf("DefaultVisibility(%q, %q) = %v, want %v", tt.role, tt.toolName, got, tt.expected)
			}
		})
	}
}

func TestVisibleMessagesHidesToolTraffic(t *testing.T) {
	service, sessionID := newTestSessionService(t)

	if _, err := service.AppendMessage(sessionID, models.RoleUser, "cuantos productos hay?", ""); err != nil {
		t.Fatalf("failed to append user message: %v", err)
	}
	if _, err := service.AppendToolCall(sessionID, models.ToolCallRequest{Name: "contar_registros", Arguments: `{"modelo":"producto"}`}); err != nil {
		t.Fatalf("failed to append tool call: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleTool, `{"cantidad":12}`, "contar_registros"); err != nil {
		t.Fatalf("failed to append tool result: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleAssistant, "Hay 12 productos.", ""); err != nil {
		t.Fatalf("failed to append assistant message: %v", err)
	}

	visible, err := service.VisibleMessages(sessionID)
	if err != nil {
		t.Fatalf("failed to list visible messages: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(visible))
	}
	if visible[0].Role != models.RoleUser || visible[1].Role != models.RoleAssistant {
		t.Errorf("unexpected visible roles: %s, %s", visible[0].Role, visible[1].Role)
	}
}

func TestEnsureSystemPromptInsertsOnce(t *testing.T) {
	service, sessionID := newTestSessionService(t)

	if err := service.EnsureSystemPrompt(sessionID, "preamble"); err != nil {
		t.Fatalf("failed to ensure system prompt: %v", err)
	}
	if err := service.EnsureSystemPrompt(sessionID, "preamble"); err != nil {
		t.Fatalf("failed to ensure system prompt twice: %v", err)
	}

	turns, err := service.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}

	systemCount := 0
	for _, turn := range turns {
		if turn.Role == models.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Errorf("expected exactly one system turn, got %d", systemCount)
	}
}

func TestReplayTurnsIsIdempotent(t *testing.T) {
	service, sessionID := newTestSessionService(t)

	if _, err := service.AppendMessage(sessionID, models.RoleUser, "ventas del mes", ""); err != nil {
		t.Fatalf("failed to append user message: %v", err)
	}
	if _, err := service.AppendToolCall(sessionID, models.ToolCallRequest{Name: "get_ventas", Arguments: `{"periodo":"mes_actual"}`}); err != nil {
		t.Fatalf("failed to append tool call: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleTool, `{"count":3}`, "get_ventas"); err != nil {
		t.Fatalf("failed to append tool result: %v", err)
	}

	first, err := service.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}
	second, err := service.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns again: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("replay lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("turn %d differs between replays: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReplayTurnsPairsToolCallWithResult(t *testing.T) {
	service, sessionID := newTestSessionService(t)

	if _, err := service.AppendMessage(sessionID, models.RoleUser, "ventas del mes", ""); err != nil {
		t.Fatalf("failed to append user message: %v", err)
	}
	if _, err := service.AppendToolCall(sessionID, models.ToolCallRequest{Name: "get_ventas", Arguments: `{}`}); err != nil {
		t.Fatalf("failed to append tool call: %v", err)
	}
	if _, err := service.AppendMessage(sessionID, models.RoleTool, `{"count":3}`, "get_ventas"); err != nil {
		t.Fatalf("failed to append tool result: %v", err)
	}

	turns, err := service.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}

	callTurn, resultTurn := turns[1], turns[2]
	if callTurn.ToolCallID == "" {
		t.Fatal("tool call turn has no call ID")
	}
	if callTurn.ToolCallID != resultTurn.ToolCallID {
		t.Errorf("tool result call ID %q does not match request %q", resultTurn.ToolCallID, callTurn.ToolCallID)
	}
	if callTurn.ToolName != "get_ventas" || resultTurn.ToolName != "get_ventas" {
		t.Errorf("unexpected tool names: %q, %q", callTurn.ToolName, resultTurn.ToolName)
	}
}
