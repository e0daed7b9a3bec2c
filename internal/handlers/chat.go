package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
)

// ChatHandler implements the companion chat endpoints.
type ChatHandler struct {
	Responder ChatResponder
	Tokens    SessionManager
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Personality    string `json:"personality"`
}

// Chat handles POST /api/ai/chat requests.
func (h ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireUser(w, r, h.Tokens); !ok {
		return
	}

	if h.Responder == nil {
		logger.Error("chat responder unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "chat unavailable"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.Personality != "" && !models.ValidPersonality(req.Personality) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown personality"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	reply := h.Responder.Respond(ctx, req.Message, req.Personality)

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"response":        reply.Text,
		"model_used":      reply.ModelUsed,
		"conversation_id": req.ConversationID,
	})
}
