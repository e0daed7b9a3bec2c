package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/storage"
	"github.com/rantsmith/backend/internal/transform"
)

func mediaDeps(rants *fakeRantStore, contents *fakeContentStore, transformer *fakeTransformer) Dependencies {
	return Dependencies{
		Rants:       rants,
		Contents:    contents,
		Tokens:      newFakeSessions(map[string]string{"tok": "user-1"}),
		Transformer: transformer,
		Transcriber: PlaceholderTranscriber{},
	}
}

func TestTransformWithAI(t *testing.T) {
	rants := newFakeRantStore()
	rants.Create(context.Background(), models.Rant{
		ID: "rant-1", UserID: "user-1",
		Content:            "bad traffic today",
		TransformationType: models.TransformPoem,
		Tone:               "neutral",
	})
	contents := newFakeContentStore()
	transformer := &fakeTransformer{result: transform.Result{Text: "a poem", ModelUsed: "stub-model"}}

	mux := routedMux(mediaDeps(rants, contents, transformer))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/media/transform-with-ai/rant-1", "tok", transformRequest{
		TransformationType: models.TransformPoem,
		Tone:               "dramatic",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["text"] != "a poem" || resp["model_used"] != "stub-model" {
		t.Fatalf("unexpected response %v", resp)
	}

	stored := contents.byType(models.ContentText)
	if len(stored) != 1 {
		t.Fatalf("expected one stored content, got %d", len(stored))
	}
	if stored[0].RantID != "rant-1" || stored[0].Body != "a poem" {
		t.Fatalf("unexpected stored content %+v", stored[0])
	}
}

func TestTransformWithAIUnknownRant(t *testing.T) {
	mux := routedMux(mediaDeps(newFakeRantStore(), newFakeContentStore(), &fakeTransformer{}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/media/transform-with-ai/nope", "tok", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGenerateArtifacts(t *testing.T) {
	cases := []struct {
		path        string
		field       string
		prefix      string
		contentType string
	}{
		{"/api/media/generate-speech/rant-1", "audio_data", "data:audio/wav;base64,", models.ContentAudio},
		{"/api/media/generate-meme/rant-1", "image_data", "data:image/svg+xml;base64,", models.ContentImage},
		{"/api/media/generate-video/rant-1", "video_data", "data:image/gif;base64,", models.ContentVideo},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			rants := newFakeRantStore()
			rants.Create(context.Background(), models.Rant{
				ID: "rant-1", UserID: "user-1",
				Content:            "a long rant about everything going wrong",
				TransformationType: models.TransformSong,
			})
			contents := newFakeContentStore()
			contents.Create(context.Background(), models.GeneratedContent{
				ID: "content-1", UserID: "user-1", RantID: "rant-1",
				ContentType: models.ContentText,
				Body:        "transformed words to speak",
			})

			mux := routedMux(mediaDeps(rants, contents, &fakeTransformer{}))

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, authedRequest(http.MethodPost, tc.path, "tok", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if !strings.HasPrefix(resp[tc.field], tc.prefix) {
				t.Fatalf("expected %s data url, got %.40s", tc.field, resp[tc.field])
			}

			if stored := contents.byType(tc.contentType); len(stored) != 1 {
				t.Fatalf("expected one stored %s artifact, got %d", tc.contentType, len(stored))
			}
		})
	}
}

func TestGenerateArtifactUploadsToStorage(t *testing.T) {
	rants := newFakeRantStore()
	rants.Create(context.Background(), models.Rant{
		ID: "rant-1", UserID: "user-1", Content: "a rant worth speaking aloud",
	})
	contents := newFakeContentStore()
	store := storage.NewMemoryStorage()

	deps := mediaDeps(rants, contents, &fakeTransformer{})
	deps.Storage = store
	mux := routedMux(deps)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/media/generate-speech/rant-1", "tok", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	stored := contents.byType(models.ContentAudio)
	if len(stored) != 1 {
		t.Fatalf("expected one audio artifact, got %d", len(stored))
	}
	if !strings.HasPrefix(stored[0].ArtifactURL, "mem://artifacts/rant-1/") {
		t.Fatalf("expected recorded artifact url, got %q", stored[0].ArtifactURL)
	}
	if _, ok := store.Get(strings.TrimPrefix(stored[0].ArtifactURL, "mem://")); !ok {
		t.Fatal("expected uploaded blob in storage")
	}
}

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadAudioCreatesRant(t *testing.T) {
	rants := newFakeRantStore()
	mux := routedMux(mediaDeps(rants, newFakeContentStore(), &fakeTransformer{}))

	body, contentType := multipartBody(t, "audio", "rant.wav", "audio/wav", []byte("not-really-audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload-audio", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["text"] == "" || resp["rant_id"] == "" {
		t.Fatalf("expected text and rant_id, got %v", resp)
	}

	rant, err := rants.FindForUser(context.Background(), resp["rant_id"], "user-1")
	if err != nil {
		t.Fatalf("expected rant stored: %v", err)
	}
	if rant.InputType != models.InputAudio {
		t.Fatalf("expected audio input type, got %q", rant.InputType)
	}
	if rant.Content != resp["text"] {
		t.Fatalf("rant content %q does not match transcript %q", rant.Content, resp["text"])
	}
}

func TestUploadAudioRequiresFile(t *testing.T) {
	mux := routedMux(mediaDeps(newFakeRantStore(), newFakeContentStore(), &fakeTransformer{}))

	body, contentType := multipartBody(t, "wrong_field", "rant.wav", "audio/wav", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload-audio", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadImage(t *testing.T) {
	store := storage.NewMemoryStorage()
	deps := mediaDeps(newFakeRantStore(), newFakeContentStore(), &fakeTransformer{})
	deps.Storage = store
	mux := routedMux(deps)

	payload := []byte{0x89, 'P', 'N', 'G'}
	body, contentType := multipartBody(t, "image", "pic.png", "image/png", payload)
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		ImageData string `json:"image_data"`
		Metadata  struct {
			Filename    string `json:"filename"`
			ContentType string `json:"content_type"`
			Size        int    `json:"size"`
			StoredURL   string `json:"stored_url"`
		} `json:"metadata"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.ImageData, "data:image/png;base64,") {
		t.Fatalf("expected png data url, got %.40s", resp.ImageData)
	}
	if resp.Metadata.Size != len(payload) || resp.Metadata.Filename != "pic.png" {
		t.Fatalf("unexpected metadata %+v", resp.Metadata)
	}
	if !strings.HasPrefix(resp.Metadata.StoredURL, "mem://uploads/user-1/") {
		t.Fatalf("expected stored url, got %q", resp.Metadata.StoredURL)
	}
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	mux := routedMux(mediaDeps(newFakeRantStore(), newFakeContentStore(), &fakeTransformer{}))

	body, contentType := multipartBody(t, "image", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestPlaceholderTranscriber(t *testing.T) {
	text, err := PlaceholderTranscriber{}.Transcribe(context.Background(), "clip.wav", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !strings.Contains(text, "clip.wav") {
		t.Fatalf("expected filename in transcript, got %q", text)
	}

	if _, err := (PlaceholderTranscriber{}).Transcribe(context.Background(), "clip.wav", io.LimitReader(strings.NewReader(""), 0)); err == nil {
		t.Fatal("expected error for empty upload")
	}
}
