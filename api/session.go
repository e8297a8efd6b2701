package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/schoolmind/schoolmind/internal/log"
	"github.com/schoolmind/schoolmind/internal/session"
)

// SessionReader is the read-only session access the handler fronts.
// Implemented by session.Store.
type SessionReader interface {
	SessionsByOwner(ctx context.Context, ownerID string) ([]session.Summary, error)
	OwnedSession(ctx context.Context, id uuid.UUID, ownerID string) (*session.Session, error)
	SessionMessages(ctx context.Context, sessionID uuid.UUID) ([]*session.Message, error)
}

// SessionHandler handles session listing and transcript endpoints.
type SessionHandler struct {
	sessions SessionReader
	logger   log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions SessionReader, logger log.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.list)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.messages)
}

// list returns the caller's sessions, most recently active first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing caller identity")
		return
	}

	summaries, err := h.sessions.SessionsByOwner(r.Context(), caller)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err, "caller", caller)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
		return
	}

	if summaries == nil {
		summaries = []session.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": summaries,
		"total":    len(summaries),
	})
}

// messages returns the full ordered transcript of one session. A
// session owned by someone else reads as not found.
func (h *SessionHandler) messages(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing caller identity")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id is not a valid UUID")
		return
	}

	if _, err := h.sessions.OwnedSession(r.Context(), id, caller); err != nil {
		h.writeSessionError(w, err, id)
		return
	}

	messages, err := h.sessions.SessionMessages(r.Context(), id)
	if err != nil {
		h.writeSessionError(w, err, id)
		return
	}

	if messages == nil {
		messages = []*session.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": id.String(),
		"messages":  messages,
		"total":     len(messages),
	})
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error, id uuid.UUID) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}
	h.logger.Error("failed to load session", "error", err, "session_id", id)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
