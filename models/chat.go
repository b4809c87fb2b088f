package models

type SendMessageRequest struct {
	Message string `json:"message"`
}

type NewSessionResponse struct {
	SessionID int `json:"session_id"`
}

type ChatResponse struct {
	SessionID int       `json:"session_id"`
	Messages  []Message `json:"messages"`
}
