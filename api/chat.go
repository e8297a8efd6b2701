package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/schoolmind/schoolmind/internal/chat"
	"github.com/schoolmind/schoolmind/internal/gateway"
	"github.com/schoolmind/schoolmind/internal/log"
	"github.com/schoolmind/schoolmind/internal/session"
)

// MaxMessageLength bounds the accepted message body.
const MaxMessageLength = 10000

// unavailableMessage is the caller-facing text for any model outage.
// Provider details never leak to the client.
const unavailableMessage = "The assistant is currently unavailable. Please try again later."

// ChatService is the conversational core the handler fronts.
// Implemented by chat.Assistant.
type ChatService interface {
	Handle(ctx context.Context, callerID string, sessionID uuid.UUID, text string) (*chat.Reply, error)
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	assistant ChatService
	logger    log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(assistant ChatService, logger log.Logger) *ChatHandler {
	return &ChatHandler{assistant: assistant, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handle)
}

// ChatRequest is the request body for a chat turn.
// An absent sessionId starts a new session.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	SessionID string    `json:"sessionId"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *ChatHandler) handle(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing caller identity")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "message too long")
		return
	}

	sessionID := uuid.Nil
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "sessionId is not a valid UUID")
			return
		}
		sessionID = id
	}

	reply, err := h.assistant.Handle(r.Context(), caller, sessionID, req.Message)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID: reply.SessionID.String(),
		Reply:     reply.Text,
		CreatedAt: reply.CreatedAt,
	})
}

// writeChatError maps orchestrator failures onto HTTP statuses.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "session not found")
	case errors.Is(err, gateway.ErrUnavailable):
		h.logger.Error("model unavailable", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", unavailableMessage)
	default:
		h.logger.Error("chat turn failed", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
