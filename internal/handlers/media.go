package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/mediasynth"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/repositories"
	"github.com/rantsmith/backend/internal/transform"
)

const maxUploadBytes = 10 << 20

// MediaHandler implements transformation and media generation endpoints.
type MediaHandler struct {
	Rants       RantStore
	Contents    ContentStore
	Tokens      SessionManager
	Transformer Transformer
	Transcriber Transcriber
	Storage     ArtifactStorage
	NowFunc     func() time.Time
}

type transformRequest struct {
	TransformationType string `json:"transformation_type"`
	Tone               string `json:"tone"`
}

// TransformWithAI handles POST /api/media/transform-with-ai/{id} requests.
// The result is persisted as generated content and returned to the caller.
func (h MediaHandler) TransformWithAI(w http.ResponseWriter, r *http.Request) {
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

	rant, ok := h.loadRant(w, r, userID)
	if !ok {
		return
	}

	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("invalid transform payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TransformationType == "" {
		req.TransformationType = rant.TransformationType
	}
	if !models.ValidTransformationType(req.TransformationType) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown transformation type"})
		return
	}
	if req.Tone == "" {
		req.Tone = rant.Tone
	}
	if !models.ValidTone(req.Tone) {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown tone"})
		return
	}

	start := h.now()
	result := h.Transformer.Transform(ctx, transform.Request{
		RantID:  rant.ID,
		Content: rant.Content,
		Type:    req.TransformationType,
		Tone:    req.Tone,
	})

	content := models.GeneratedContent{
		ID:             uuid.NewString(),
		UserID:         userID,
		RantID:         rant.ID,
		ContentType:    models.ContentText,
		Title:          fmt.Sprintf("%s (%s)", req.TransformationType, req.Tone),
		Body:           result.Text,
		ModelUsed:      result.ModelUsed,
		ProcessingTime: h.now().Sub(start),
		CreatedAt:      h.now(),
	}
	if err := h.Contents.Create(ctx, content); err != nil {
		logger.Error("failed to store generated content", "error", err, "rantId", rant.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store result"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"text":       result.Text,
		"model_used": result.ModelUsed,
	})
}

// GenerateSpeech handles POST /api/media/generate-speech/{id} requests.
func (h MediaHandler) GenerateSpeech(w http.ResponseWriter, r *http.Request) {
	h.generateArtifact(w, r, models.ContentAudio, "audio_data", mediasynth.Speech)
}

// GenerateMeme handles POST /api/media/generate-meme/{id} requests.
func (h MediaHandler) GenerateMeme(w http.ResponseWriter, r *http.Request) {
	h.generateArtifact(w, r, models.ContentImage, "image_data", mediasynth.Meme)
}

// GenerateVideo handles POST /api/media/generate-video/{id} requests.
func (h MediaHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	h.generateArtifact(w, r, models.ContentVideo, "video_data", mediasynth.Video)
}

// generateArtifact renders an artifact from the rant's most recent transformed
// text, falling back to the raw rant content when nothing has been generated
// yet. The data URL is always returned; upload to object storage is
// best-effort when configured.
func (h MediaHandler) generateArtifact(
	w http.ResponseWriter,
	r *http.Request,
	contentType, field string,
	render func(string) (string, error),
) {
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

	rant, ok := h.loadRant(w, r, userID)
	if !ok {
		return
	}

	text := rant.Content
	if latest, err := h.Contents.LatestTextForRant(ctx, rant.ID); err == nil {
		text = latest.Body
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("failed to load latest content", "error", err, "rantId", rant.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load content"})
		return
	}

	start := h.now()
	dataURL, err := render(text)
	if err != nil {
		logger.Error("artifact synthesis failed", "error", err, "rantId", rant.ID, "contentType", contentType)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to generate media"})
		return
	}

	content := models.GeneratedContent{
		ID:             uuid.NewString(),
		UserID:         userID,
		RantID:         rant.ID,
		ContentType:    contentType,
		Title:          fmt.Sprintf("%s for %s", contentType, rant.TransformationType),
		Body:           dataURL,
		ModelUsed:      "mediasynth",
		ProcessingTime: h.now().Sub(start),
		CreatedAt:      h.now(),
	}
	if err := h.Contents.Create(ctx, content); err != nil {
		logger.Error("failed to store artifact", "error", err, "rantId", rant.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store result"})
		return
	}

	if h.Storage != nil {
		h.uploadArtifact(ctx, content, dataURL)
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{field: dataURL})
}

// uploadArtifact mirrors the data URL into object storage and records the
// public location. Failures only cost the stored copy.
func (h MediaHandler) uploadArtifact(ctx context.Context, content models.GeneratedContent, dataURL string) {
	logger := logging.FromContext(ctx)

	payload, mime, err := decodeDataURL(dataURL)
	if err != nil {
		logger.Warn("artifact not uploadable", "error", err, "contentId", content.ID)
		return
	}

	name := fmt.Sprintf("artifacts/%s/%s%s", content.RantID, content.ID, extensionFor(mime))
	url, err := h.Storage.Save(ctx, name, mime, bytes.NewReader(payload))
	if err != nil {
		logger.Warn("artifact upload failed", "error", err, "contentId", content.ID)
		return
	}

	if err := h.Contents.SetArtifactURL(ctx, content.ID, url); err != nil {
		logger.Warn("failed to record artifact url", "error", err, "contentId", content.ID)
	}
}

// UploadAudio handles POST /api/media/upload-audio multipart requests. The
// transcript becomes a new rant owned by the caller.
func (h MediaHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid audio upload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "audio file is required"})
		return
	}
	defer file.Close()

	text, err := h.Transcriber.Transcribe(ctx, header.Filename, io.LimitReader(file, maxUploadBytes))
	if err != nil {
		logger.Error("transcription failed", "error", err, "filename", header.Filename)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to transcribe audio"})
		return
	}

	rant := models.Rant{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Content:            text,
		InputType:          models.InputAudio,
		TransformationType: models.TransformPoem,
		Tone:               "neutral",
		Privacy:            models.PrivacyPrivate,
		Status:             models.StatusPending,
		CreatedAt:          h.now(),
	}
	if err := h.Rants.Create(ctx, rant); err != nil {
		logger.Error("failed to store transcribed rant", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store rant"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{
		"text":    text,
		"rant_id": rant.ID,
	})
}

// UploadImage handles POST /api/media/upload-image multipart requests.
func (h MediaHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid image upload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "image file is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "file must be an image"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		logger.Error("failed to read image upload", "error", err, "filename", header.Filename)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to read image"})
		return
	}

	storedURL := ""
	if h.Storage != nil {
		name := fmt.Sprintf("uploads/%s/%s-%s", userID, uuid.NewString(), path.Base(header.Filename))
		if url, err := h.Storage.Save(ctx, name, contentType, bytes.NewReader(data)); err != nil {
			logger.Warn("image upload to storage failed", "error", err, "filename", header.Filename)
		} else {
			storedURL = url
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"image_data": fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
		"metadata": map[string]any{
			"filename":     header.Filename,
			"content_type": contentType,
			"size":         len(data),
			"stored_url":   storedURL,
		},
	})
}

func (h MediaHandler) loadRant(w http.ResponseWriter, r *http.Request, userID string) (models.Rant, bool) {
	ctx := r.Context()

	rant, err := h.Rants.FindForUser(ctx, r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "rant not found"})
		} else {
			logging.FromContext(ctx).Error("rant lookup failed", "error", err, "rantId", r.PathValue("id"))
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load rant"})
		}
		return models.Rant{}, false
	}
	return rant, true
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data url")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("unsupported data url encoding")
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return payload, strings.TrimSuffix(meta, ";base64"), nil
}

func extensionFor(mime string) string {
	switch mime {
	case "audio/wav":
		return ".wav"
	case "image/svg+xml":
		return ".svg"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

// PlaceholderTranscriber stands in for a speech-to-text provider. It produces
// a deterministic transcript naming the uploaded file so the submission flow
// is exercisable end to end without external services.
type PlaceholderTranscriber struct{}

// Transcribe returns a transcript derived from the upload.
func (PlaceholderTranscriber) Transcribe(_ context.Context, filename string, r io.Reader) (string, error) {
	size, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	if size == 0 {
		return "", fmt.Errorf("empty audio upload")
	}
	return fmt.Sprintf("Voice rant from %s awaiting transcription.", path.Base(filename)), nil
}

func (h MediaHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
