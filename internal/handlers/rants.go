package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rantsmith/backend/internal/analysis"
	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/repositories"
)

const (
	minRantLength = 5
	maxRantLength = 5000

	defaultPerPage = 20
	maxPerPage     = 100
)

// RantHandler implements rant submission, history, and analysis endpoints.
type RantHandler struct {
	Rants   RantStore
	Tokens  SessionManager
	NowFunc func() time.Time
}

type submitRequest struct {
	Content            string `json:"content"`
	TransformationType string `json:"transformation_type"`
	Tone               string `json:"tone"`
	Privacy            string `json:"privacy"`
	InputType          string `json:"input_type"`
}

type rantPayload struct {
	ID                 string   `json:"id"`
	Content            string   `json:"content"`
	InputType          string   `json:"input_type"`
	TransformationType string   `json:"transformation_type"`
	Tone               string   `json:"tone"`
	Privacy            string   `json:"privacy"`
	DetectedEmotion    string   `json:"detected_emotion,omitempty"`
	EmotionConfidence  float64  `json:"emotion_confidence,omitempty"`
	SentimentScore     float64  `json:"sentiment_score,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	Processed          bool     `json:"processed"`
	Status             string   `json:"status"`
	CreatedAt          string   `json:"created_at"`
}

// Submit handles POST /api/rant/submit requests.
func (h RantHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid submit payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}
	if len(req.Content) < minRantLength {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content must be at least 5 characters"})
		return
	}
	if len(req.Content) > maxRantLength {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content must be at most 5000 characters"})
		return
	}

	if req.TransformationType == "" {
		req.TransformationType = models.TransformPoem
	}
	if !models.ValidTransformationType(req.TransformationType) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown transformation type"})
		return
	}
	if req.Tone == "" {
		req.Tone = "neutral"
	}
	if !models.ValidTone(req.Tone) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown tone"})
		return
	}
	if req.Privacy != models.PrivacyPublic {
		req.Privacy = models.PrivacyPrivate
	}
	if req.InputType != models.InputAudio && req.InputType != models.InputImage {
		req.InputType = models.InputText
	}

	rant := models.Rant{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Content:            req.Content,
		InputType:          req.InputType,
		TransformationType: req.TransformationType,
		Tone:               req.Tone,
		Privacy:            req.Privacy,
		Status:             models.StatusPending,
		CreatedAt:          h.now(),
	}

	if err := h.Rants.Create(ctx, rant); err != nil {
		logger.Error("failed to store rant", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store rant"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"rant_id": rant.ID,
		"rant":    toRantPayload(rant),
	})
}

// History handles GET /api/rant/history requests with pagination.
func (h RantHandler) History(w http.ResponseWriter, r *http.Request) {
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

	rants, total, err := h.Rants.ListForUser(ctx, userID, page, perPage)
	if err != nil {
		logging.FromContext(ctx).Error("failed to list rants", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}

	payloads := make([]rantPayload, 0, len(rants))
	for _, rant := range rants {
		payloads = append(payloads, toRantPayload(rant))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"rants":    payloads,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// ByID handles GET and DELETE /api/rant/{id} requests.
func (h RantHandler) ByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	rantID := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		rant, err := h.Rants.FindForUser(ctx, rantID, userID)
		if err != nil {
			h.respondLookupError(w, r, err, rantID)
			return
		}
		respondJSON(ctx, w, http.StatusOK, map[string]any{"rant": toRantPayload(rant)})

	case http.MethodDelete:
		if err := h.Rants.Delete(ctx, rantID, userID); err != nil {
			h.respondLookupError(w, r, err, rantID)
			return
		}
		respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "rant deleted"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Process handles POST /api/ai/process/{id}: runs the analyzer over the rant
// and stores the detected emotion, sentiment, and keywords.
func (h RantHandler) Process(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	rantID := r.PathValue("id")
	rant, err := h.Rants.FindForUser(ctx, rantID, userID)
	if err != nil {
		h.respondLookupError(w, r, err, rantID)
		return
	}
	if rant.Processed {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "rant already processed"})
		return
	}

	ctx, span := logging.StartSpan(ctx, "analyze-rant")
	result := analysis.Analyze(rant.Content)
	span.End()

	now := h.now()
	rant.DetectedEmotion = result.Emotion
	rant.EmotionConfidence = result.EmotionConfidence
	rant.SentimentScore = result.SentimentScore
	rant.Keywords = result.Keywords
	rant.Processed = true
	rant.Status = models.StatusCompleted
	rant.ProcessedAt = &now

	if err := h.Rants.SaveAnalysis(ctx, rant); err != nil {
		logging.FromContext(ctx).Error("failed to save analysis", "error", err, "rantId", rantID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to save analysis"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"rant":    toRantPayload(rant),
		"summary": result.Summary,
	})
}

func (h RantHandler) respondLookupError(w http.ResponseWriter, r *http.Request, err error, rantID string) {
	ctx := r.Context()
	if errors.Is(err, repositories.ErrNotFound) {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "rant not found"})
		return
	}
	logging.FromContext(ctx).Error("rant lookup failed", "error", err, "rantId", rantID)
	respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load rant"})
}

func toRantPayload(rant models.Rant) rantPayload {
	return rantPayload{
		ID:                 rant.ID,
		Content:            rant.Content,
		InputType:          rant.InputType,
		TransformationType: rant.TransformationType,
		Tone:               rant.Tone,
		Privacy:            rant.Privacy,
		DetectedEmotion:    rant.DetectedEmotion,
		EmotionConfidence:  rant.EmotionConfidence,
		SentimentScore:     rant.SentimentScore,
		Keywords:           rant.Keywords,
		Processed:          rant.Processed,
		Status:             rant.Status,
		CreatedAt:          rant.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func (h RantHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
