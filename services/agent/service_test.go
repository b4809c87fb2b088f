package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"erpchat/db"
	"erpchat/models"
	"erpchat/services"
	"erpchat/services/llm"
)

// scriptedClient replays a fixed sequence of replies, one per Chat call.
type scriptedClient struct {
	replies []scriptedReply
	calls   int
	turns   [][]llm.Turn
}

type scriptedReply struct {
	reply *llm.Reply
	err   error
}

func (c *scriptedClient) Chat(ctx context.Context, turns []llm.Turn, tools []llm.ToolSpec, temperature float64) (*llm.Reply, error) {
	c.turns = append(c.turns, turns)
	if c.calls >= len(c.replies) {
		return nil, errors.New("no scripted reply left")
	}
	r := c.replies[c.calls]
	c.calls++
	return r.reply, r.err
}

func toolReply(name, args string) scriptedReply {
	return scriptedReply{reply: &llm.Reply{ToolCall: &llm.ToolCallRequest{Name: name, Arguments: args}}}
}

func textReply(text string) scriptedReply {
	return scriptedReply{reply: &llm.Reply{Text: text}}
}

func newTestAgent(t *testing.T, client llm.Client, tools ...Tool) (*Service, *services.SessionService, int) {
	t.Helper()
	sessions := services.NewSessionService(db.NewMemorySessionRepository())
	session, err := sessions.NewSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	service := NewService(client, NewRegistry(tools...), sessions, 10, 0.3)
	return service, sessions, session.ID
}

func TestProcessMessageDirectAnswer(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{textReply("Hola! Puedo consultar productos, ventas y facturas.")}}
	service, _, sessionID := newTestAgent(t, client)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "hola")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(visible) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(visible))
	}
	if visible[0].Role != models.RoleUser || visible[1].Role != models.RoleAssistant {
		t.Errorf("unexpected visible roles: %s, %s", visible[0].Role, visible[1].Role)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", client.calls)
	}
}

func TestProcessMessageChainsTools(t *testing.T) {
	products := &stubTool{name: "get_productos", result: models.ToolResult{"ids": []int{1, 2}, "message": "Se encontraron 2 productos."}}
	sales := &stubTool{name: "get_ventas", result: models.ToolResult{"count": 3, "message": "Se encontraron 3 pedidos por $450.00"}}
	client := &scriptedClient{replies: []scriptedReply{
		toolReply("get_productos", `{"nombre":"notebook"}`),
		toolReply("get_ventas", `{"producto_ids":[1,2]}`),
		textReply("Las notebooks vendieron $450 este mes."),
	}}
	service, sessions, sessionID := newTestAgent(t, client, products, sales)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "cuanto vendimos en notebooks?")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	// Transcript: system, user, call, result, call, result, answer.
	turns, err := sessions.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}
	if len(turns) != 7 {
		t.Fatalf("expected 7 turns, got %d", len(turns))
	}

	if len(visible) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(visible))
	}
	if visible[1].Content != "Las notebooks vendieron $450 este mes." {
		t.Errorf("unexpected final answer: %q", visible[1].Content)
	}

	if products.gotArgs != `{"nombre":"notebook"}` {
		t.Errorf("first tool got args %q", products.gotArgs)
	}
	if sales.gotArgs != `{"producto_ids":[1,2]}` {
		t.Errorf("second tool got args %q", sales.gotArgs)
	}

	// Each LLM call must see the full history so far.
	if client.calls != 3 {
		t.Fatalf("expected 3 LLM calls, got %d", client.calls)
	}
	if len(client.turns[2]) <= len(client.turns[0]) {
		t.Error("later calls should replay a longer transcript")
	}
}

func TestProcessMessageGuardrailNarrowing(t *testing.T) {
	warn := models.WarningResult(120, map[string]any{}, "Hay 120 productos que coinciden con la busqueda.")
	tool := &stubTool{name: "get_productos", result: warn}
	client := &scriptedClient{replies: []scriptedReply{
		toolReply("get_productos", `{}`),
		textReply("Hay demasiados productos. Podes acotar por nombre o categoria?"),
	}}
	service, _, sessionID := newTestAgent(t, client, tool)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "listame todos los productos")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(visible) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(visible))
	}
	if !strings.Contains(visible[1].Content, "acotar") {
		t.Errorf("expected a narrowing request, got %q", visible[1].Content)
	}
}

func TestProcessMessageLLMFault(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{err: errors.New("status 500")}}}
	tool := &stubTool{name: "get_productos"}
	service, sessions, sessionID := newTestAgent(t, client, tool)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "hola")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(visible) != 2 {
		t.Fatalf("expected 2 visible messages, got %d", len(visible))
	}
	if !strings.HasPrefix(visible[1].Content, "Error al consultar IA:") {
		t.Errorf("expected a visible fault message, got %q", visible[1].Content)
	}
	if tool.gotArgs != "" {
		t.Error("no tool should run after an LLM fault")
	}

	// The fault ends the turn after a single LLM call.
	if client.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", client.calls)
	}

	turns, err := sessions.ReplayTurns(sessionID)
	if err != nil {
		t.Fatalf("failed to replay turns: %v", err)
	}
	for _, turn := range turns {
		if turn.Role == models.RoleTool {
			t.Error("transcript must not contain tool turns after a fault")
		}
	}
}

func TestProcessMessageIterationLimit(t *testing.T) {
	tool := &stubTool{name: "get_productos", result: models.ToolResult{"message": "listo"}}
	replies := make([]scriptedReply, 0, 12)
	for i := 0; i < 12; i++ {
		replies = append(replies, toolReply("get_productos", `{}`))
	}
	client := &scriptedClient{replies: replies}
	service, _, sessionID := newTestAgent(t, client, tool)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "dame todo")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if client.calls != 10 {
		t.Errorf("expected exactly 10 LLM calls, got %d", client.calls)
	}
	last := visible[len(visible)-1]
	if last.Content != "Se alcanzo el limite de operaciones. Por favor, reformula tu pregunta." {
		t.Errorf("unexpected limit message: %q", last.Content)
	}
}

func TestProcessMessageMalformedToolArguments(t *testing.T) {
	tool := &stubTool{name: "get_productos", result: models.ToolResult{"message": "listo"}}
	client := &scriptedClient{replies: []scriptedReply{
		toolReply("get_productos", `{"nombre": `),
		textReply("Listo."),
	}}
	service, _, sessionID := newTestAgent(t, client, tool)

	if _, err := service.ProcessMessage(context.Background(), sessionID, "productos"); err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if tool.gotArgs != "{}" {
		t.Errorf("malformed arguments should be replaced with {}, tool got %q", tool.gotArgs)
	}
}

func TestProcessMessageEmptyReplyText(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{textReply("")}}
	service, _, sessionID := newTestAgent(t, client)

	visible, err := service.ProcessMessage(context.Background(), sessionID, "hola")
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	last := visible[len(visible)-1]
	if last.Content != "No pude procesar tu consulta." {
		t.Errorf("expected fallback answer, got %q", last.Content)
	}
}
