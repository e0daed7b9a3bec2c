package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/repositories"
)

// UserHandler implements preference and generated-content endpoints.
type UserHandler struct {
	Users    UserStore
	Contents ContentStore
	Tokens   SessionManager
}

type preferencesPayload struct {
	PreferredFormat string `json:"preferred_format"`
	AIPersonality   string `json:"ai_personality"`
	DisplayName     string `json:"display_name"`
	Bio             string `json:"bio"`
}

// Preferences handles GET and PUT /api/user/preferences requests.
func (h UserHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("preferences lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, toPreferencesPayload(user))

	case http.MethodPut:
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		if req.AIPersonality != nil {
			if !models.ValidPersonality(*req.AIPersonality) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown personality"})
				return
			}
			user.AIPersonality = *req.AIPersonality
		}
		if req.PreferredFormat != nil {
			if !models.ValidTransformationType(*req.PreferredFormat) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown preferred format"})
				return
			}
			user.PreferredFormat = *req.PreferredFormat
		}
		if req.DisplayName != nil {
			user.DisplayName = strings.TrimSpace(*req.DisplayName)
		}
		if req.Bio != nil {
			user.Bio = strings.TrimSpace(*req.Bio)
		}

		if err := h.Users.UpdateProfile(ctx, user); err != nil {
			logging.FromContext(ctx).Error("preferences update failed", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update preferences"})
			return
		}

		respondJSON(ctx, w, http.StatusOK, map[string]any{
			"message":     "preferences updated",
			"preferences": toPreferencesPayload(user),
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ToggleFavorite handles POST /api/user/favorites/{id}: flips the favorite
// flag on one of the caller's generated outputs.
func (h UserHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	contentID := r.PathValue("id")
	favorite, err := h.Contents.ToggleFavorite(ctx, contentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "content not found"})
			return
		}
		logging.FromContext(ctx).Error("favorite toggle failed", "error", err, "contentId", contentID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update favorite"})
		return
	}

	message := "removed from favorites"
	if favorite {
		message = "added to favorites"
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"favorite": favorite,
		"message":  message,
	})
}

type contentPayload struct {
	ID          string `json:"id"`
	RantID      string `json:"rant_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
	ModelUsed   string `json:"model_used"`
	IsFavorite  bool   `json:"is_favorite"`
	CreatedAt   string `json:"created_at"`
}

// ContentHistory handles GET /api/ai/content-history requests with pagination
// and an optional content type filter.
func (h UserHandler) ContentHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	contentType := r.URL.Query().Get("type")
	if contentType != "" && !validContentType(contentType) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown content type"})
		return
	}

	contents, total, err := h.Contents.ListForUser(ctx, userID, page, perPage, contentType)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list generated content", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load content history"})
		return
	}

	payloads := make([]contentPayload, 0, len(contents))
	for _, content := range contents {
		payloads = append(payloads, toContentPayload(content))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"contents": payloads,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"has_next": page*perPage < total,
		"has_prev": page > 1,
	})
}

func validContentType(contentType string) bool {
	switch contentType {
	case models.ContentText, models.ContentAudio, models.ContentImage, models.ContentVideo:
		return true
	}
	return false
}

func toPreferencesPayload(user models.User) preferencesPayload {
	return preferencesPayload{
		PreferredFormat: user.PreferredFormat,
		AIPersonality:   user.AIPersonality,
		DisplayName:     user.DisplayName,
		Bio:             user.Bio,
	}
}

func toContentPayload(content models.GeneratedContent) contentPayload {
	return contentPayload{
		ID:          content.ID,
		RantID:      content.RantID,
		ContentType: content.ContentType,
		Title:       content.Title,
		Body:        content.Body,
		ArtifactURL: content.ArtifactURL,
		ModelUsed:   content.ModelUsed,
		IsFavorite:  content.IsFavorite,
		CreatedAt:   content.CreatedAt.UTC().Format(time.RFC3339),
	}
}
