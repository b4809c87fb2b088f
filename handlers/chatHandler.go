package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"erpchat/models"
	"erpchat/services"
	"erpchat/services/agent"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	agentService   *agent.Service
	sessionService *services.SessionService
}

func NewChatHandler(agentService *agent.Service, sessionService *services.SessionService) *ChatHandler {
	return &ChatHandler{agentService: agentService, sessionService: sessionService}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat/sessions", h.CreateSession).Methods("POST")
	router.HandleFunc("/chat/sessions/{id}/messages", h.SendMessage).Methods("POST")
	router.HandleFunc("/chat/sessions/{id}/messages", h.GetMessages).Methods("GET")
}

func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received create session request")

	session, err := h.sessionService.NewSession()
	if err != nil {
		log.Printf("[ERROR] Failed to create session: %v", err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, models.NewSessionResponse{SessionID: session.ID})
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode send message request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		log.Printf("[ERROR] Empty message in send request for session %d", sessionID)
		h.writeErrorResponse(w, http.StatusBadRequest, "Message is required")
		return
	}

	messages, err := h.agentService.ProcessMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		log.Printf("[ERROR] Message processing failed for session %d: %v", sessionID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.ChatResponse{SessionID: sessionID, Messages: messages})
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	messages, err := h.sessionService.VisibleMessages(sessionID)
	if err != nil {
		log.Printf("[ERROR] Failed to list messages for session %d: %v", sessionID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, models.ChatResponse{SessionID: sessionID, Messages: messages})
}

func (h *ChatHandler) sessionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		log.Printf("[ERROR] Invalid session ID: %s", vars["id"])
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return 0, false
	}

	if _, err := h.sessionService.GetSession(id); err != nil {
		log.Printf("[ERROR] Session %d not found: %v", id, err)
		h.writeErrorResponse(w, http.StatusNotFound, "Session not found")
		return 0, false
	}

	return id, true
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
