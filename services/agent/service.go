package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"erpchat/models"
	"erpchat/services"
	"erpchat/services/llm"
)

// llmCallTimeout bounds a single provider round trip, not the whole turn.
const llmCallTimeout = 60 * time.Second

// Service runs the tool-calling loop for one user message: replay the
// transcript, ask the model, execute at most one tool per iteration, and
// stop on a text answer, a provider fault, or the iteration cap.
type Service struct {
	client        llm.Client
	registry      *Registry
	sessions      *services.SessionService
	maxIterations int
	temperature   float64
}

func NewService(client llm.Client, registry *Registry, sessions *services.SessionService, maxIterations int, temperature float64) *Service {
	return &Service{
		client:        client,
		registry:      registry,
		sessions:      sessions,
		maxIterations: maxIterations,
		temperature:   temperature,
	}
}

// ProcessMessage appends the user's text to the session transcript, runs
// the loop, and returns the visible conversation so far. Provider faults
// and the iteration cap both end the turn with a visible assistant
// message; they are not returned as errors.
func (s *Service) ProcessMessage(ctx context.Context, sessionID int, text string) ([]models.Message, error) {
	if err := s.sessions.EnsureSystemPrompt(sessionID, SystemPrompt); err != nil {
		return nil, err
	}
	if _, err := s.sessions.AppendMessage(sessionID, models.RoleUser, text, ""); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Processing message for session %d", sessionID)
	specs := s.registry.Specs()

	done := false
	for i := 0; i < s.maxIterations && !done; i++ {
		turns, err := s.sessions.ReplayTurns(sessionID)
		if err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
		reply, err := s.client.Chat(callCtx, turns, specs, s.temperature)
		cancel()
		if err != nil {
			log.Printf("[ERROR] LLM request failed for session %d: %v", sessionID, err)
			if _, aerr := s.sessions.AppendMessage(sessionID, models.RoleAssistant,
				fmt.Sprintf("Error al consultar IA: %v", err), ""); aerr != nil {
				return nil, aerr
			}
			break
		}

		switch {
		case reply.ToolCall != nil:
			if err := s.runTool(ctx, sessionID, *reply.ToolCall); err != nil {
				return nil, err
			}
		default:
			content := reply.Text
			if content == "" {
				content = "No pude procesar tu consulta."
			}
			if _, err := s.sessions.AppendMessage(sessionID, models.RoleAssistant, content, ""); err != nil {
				return nil, err
			}
			done = true
		}

		if i == s.maxIterations-1 && !done {
			log.Printf("[INFO] Session %d hit the iteration limit", sessionID)
			if _, err := s.sessions.AppendMessage(sessionID, models.RoleAssistant,
				"Se alcanzo el limite de operaciones. Por favor, reformula tu pregunta.", ""); err != nil {
				return nil, err
			}
		}
	}

	return s.sessions.VisibleMessages(sessionID)
}

// runTool records the model's tool request, executes it, and records the
// normalized result as a hidden tool message.
func (s *Service) runTool(ctx context.Context, sessionID int, call llm.ToolCallRequest) error {
	args := call.Arguments
	if !json.Valid([]byte(args)) {
		log.Printf("[ERROR] Malformed tool arguments for '%s': %s", call.Name, args)
		args = "{}"
	}

	if _, err := s.sessions.AppendToolCall(sessionID, models.ToolCallRequest{
		Name:      call.Name,
		Arguments: args,
	}); err != nil {
		return err
	}

	result := s.registry.Invoke(ctx, call.Name, args)
	_, err := s.sessions.AppendMessage(sessionID, models.RoleTool, result.JSON(), call.Name)
	return err
}
