package services

import (
	"fmt"
	"log"
	"time"

	"erpchat/db"
	"erpchat/models"
	"erpchat/services/llm"
)

// SessionService owns the conversation transcript: an append-only,
// sequence-ordered message history per session, with a human-visible
// projection and an LLM-replayable projection.
type SessionService struct {
	repo db.SessionRepository
}

func NewSessionService(repo db.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) NewSession() (*models.Session, error) {
	session, err := s.repo.CreateSession(time.Now().Format("2006-01-02 15:04"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("[INFO] Created session %d", session.ID)
	return session, nil
}

func (s *SessionService) GetSession(id int) (*models.Session, error) {
	return s.repo.GetSessionByID(id)
}

// AppendMessage appends a text message. Visibility follows the default
// rule: user text and plain assistant answers are visible, everything
// else is hidden.
func (s *SessionService) AppendMessage(sessionID int, role, content, toolName string) (*models.Message, error) {
	msg := &models.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		ToolName:  toolName,
		Visible:   models.DefaultVisibility(role, toolName),
	}
	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to append %s message: %w", role, err)
	}
	return msg, nil
}

// AppendToolCall records the assistant's decision to invoke a tool, as a
// hidden structured message.
func (s *SessionService) AppendToolCall(sessionID int, call models.ToolCallRequest) (*models.Message, error) {
	msg := &models.Message{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		ToolName:  call.Name,
		ToolCall:  &call,
		Visible:   false,
	}
	if err := s.repo.AppendMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to append tool call message: %w", err)
	}
	return msg, nil
}

// EnsureSystemPrompt inserts the system preamble once per session, before
// the first user message.
func (s *SessionService) EnsureSystemPrompt(sessionID int, prompt string) error {
	messages, err := s.repo.ListMessages(sessionID)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			return nil
		}
	}

	_, err = s.AppendMessage(sessionID, models.RoleSystem, prompt, "")
	return err
}

// VisibleMessages returns the human-facing subsequence in sequence order.
func (s *SessionService) VisibleMessages(sessionID int) ([]models.Message, error) {
	messages, err := s.repo.ListMessages(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	visible := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Visible {
			visible = append(visible, msg)
		}
	}
	return visible, nil
}

// ReplayTurns rebuilds the exact conversation shape the LLM must see. A
// pure function of stored state: replaying twice yields identical turns.
// Tool-call IDs are derived from the requesting message's sequence so the
// tool output that follows can reference the same ID.
func (s *SessionService) ReplayTurns(sessionID int) ([]llm.Turn, error) {
	messages, err := s.repo.ListMessages(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	turns := make([]llm.Turn, 0, len(messages))
	pendingCallID := ""
	for _, msg := range messages {
		switch {
		case msg.Role == models.RoleAssistant && msg.ToolCall != nil:
			pendingCallID = fmt.Sprintf("call_%d", msg.Sequence)
			turns = append(turns, llm.Turn{
				Role:       models.RoleAssistant,
				ToolName:   msg.ToolCall.Name,
				ToolCallID: pendingCallID,
				ToolArgs:   msg.ToolCall.Arguments,
			})
		case msg.Role == models.RoleTool:
			callID := pendingCallID
			if callID == "" {
				callID = fmt.Sprintf("call_%d", msg.Sequence)
			}
			turns = append(turns, llm.Turn{
				Role:       models.RoleTool,
				ToolName:   msg.ToolName,
				ToolCallID: callID,
				Content:    msg.Content,
			})
			pendingCallID = ""
		default:
			turns = append(turns, llm.Turn{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	return turns, nil
}
