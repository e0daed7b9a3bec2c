package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rantsmith/backend/internal/logging"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users       UserStore
	Rants       RantStore
	Contents    ContentStore
	Tokens      SessionManager
	Transformer Transformer
	Responder   ChatResponder
	Transcriber Transcriber
	Storage     ArtifactStorage
	Limiter     RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Tokens: deps.Tokens, Limiter: deps.Limiter}
	rants := RantHandler{Rants: deps.Rants, Tokens: deps.Tokens}
	media := MediaHandler{
		Rants:       deps.Rants,
		Contents:    deps.Contents,
		Tokens:      deps.Tokens,
		Transformer: deps.Transformer,
		Transcriber: deps.Transcriber,
		Storage:     deps.Storage,
	}
	chat := ChatHandler{Responder: deps.Responder, Tokens: deps.Tokens}
	users := UserHandler{Users: deps.Users, Contents: deps.Contents, Tokens: deps.Tokens}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/health", health.Handle)

	mux.HandleFunc("/auth/register", auth.Register)
	mux.HandleFunc("/auth/login", auth.Login)
	mux.HandleFunc("/auth/logout", auth.Logout)
	mux.HandleFunc("/auth/user", auth.CurrentUser)
	mux.HandleFunc("/auth/profile", auth.Profile)
	mux.HandleFunc("/auth/change-password", auth.ChangePassword)

	mux.HandleFunc("/api/user/preferences", users.Preferences)
	mux.HandleFunc("/api/user/favorites/{id}", users.ToggleFavorite)

	mux.HandleFunc("/api/rant/submit", rants.Submit)
	mux.HandleFunc("/api/rant/history", rants.History)
	mux.HandleFunc("/api/rant/{id}", rants.ByID)
	mux.HandleFunc("/api/ai/process/{id}", rants.Process)
	mux.HandleFunc("/api/ai/content-history", users.ContentHistory)

	mux.HandleFunc("/api/media/transform-with-ai/{id}", media.TransformWithAI)
	mux.HandleFunc("/api/media/generate-speech/{id}", media.GenerateSpeech)
	mux.HandleFunc("/api/media/generate-meme/{id}", media.GenerateMeme)
	mux.HandleFunc("/api/media/generate-video/{id}", media.GenerateVideo)
	mux.HandleFunc("/api/media/upload-audio", media.UploadAudio)
	mux.HandleFunc("/api/media/upload-image", media.UploadImage)

	mux.HandleFunc("/api/ai/chat", chat.Chat)
	mux.HandleFunc("/api/ai/chat/ws", chat.WebSocket)
}

// bearerToken extracts the token from the Authorization header, if any.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireUser verifies the bearer token and writes a 401 when it fails.
// It returns the owning user id and whether the request may proceed.
func requireUser(w http.ResponseWriter, r *http.Request, tokens SessionManager) (string, bool) {
	ctx := r.Context()

	if tokens == nil {
		logging.FromContext(ctx).Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return "", false
	}

	token := bearerToken(r)
	if token == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return "", false
	}

	userID, err := tokens.Verify(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Warn("token verification failed", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return "", false
	}
	return userID, true
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
