package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rantsmith/backend/internal/auth"
	"github.com/rantsmith/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)

	user := models.User{
		ID:              uuid.NewString(),
		Username:        "alice",
		Email:           "alice@example.com",
		PasswordHash:    "secret-hash",
		AIPersonality:   "supportive",
		PreferredFormat: "text",
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := user
	dup.ID = uuid.NewString()
	dup.Username = "alice2"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != user.ID || fetched.Username != user.Username || fetched.PasswordHash != user.PasswordHash {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}
	if fetched.LastLoginAt != nil {
		t.Fatalf("expected no last login yet, got %v", fetched.LastLoginAt)
	}

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if byName.ID != user.ID {
		t.Fatalf("expected same user by username, got %+v", byName)
	}

	loginAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.RecordLogin(ctx, user.ID, loginAt); err != nil {
		t.Fatalf("record login: %v", err)
	}

	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.LastLoginAt == nil || !timesClose(*fetched.LastLoginAt, loginAt, time.Millisecond) {
		t.Fatalf("expected last login %v, got %v", loginAt, fetched.LastLoginAt)
	}

	if err := repo.RecordLogin(ctx, uuid.NewString(), loginAt); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound recording login for missing user, got %v", err)
	}
}

func TestPostgresUserRepository_UpdateProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "bob", "bob@example.com")

	user.DisplayName = "Bob the Ranter"
	user.Bio = "Professional complainer."
	user.AIPersonality = "sarcastic"
	user.PreferredFormat = "rap"
	if err := repo.UpdateProfile(ctx, user); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	fetched, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.DisplayName != "Bob the Ranter" || fetched.Bio != "Professional complainer." {
		t.Fatalf("profile not persisted: %+v", fetched)
	}
	if fetched.AIPersonality != "sarcastic" || fetched.PreferredFormat != "rap" {
		t.Fatalf("preferences not persisted: %+v", fetched)
	}

	if err := repo.UpdatePassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.PasswordHash != "new-hash" {
		t.Fatalf("password hash not replaced: %q", fetched.PasswordHash)
	}

	missing := user
	missing.ID = uuid.NewString()
	if err := repo.UpdateProfile(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
	if err := repo.UpdatePassword(ctx, missing.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound replacing password for missing user, got %v", err)
	}
}

func TestPostgresRantRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	other := createTestUser(t, userRepo, "other", "other@example.com")

	repo := NewPostgresRantRepository(testPool)

	base := time.Now().UTC().Add(-time.Hour)
	var rants []models.Rant
	for i := 0; i < 3; i++ {
		rant := models.Rant{
			ID:                 uuid.NewString(),
			UserID:             owner.ID,
			Content:            fmt.Sprintf("rant number %d about traffic", i),
			InputType:          models.InputText,
			TransformationType: models.TransformPoem,
			Tone:               "neutral",
			Privacy:            models.PrivacyPrivate,
			DetectedEmotion:    models.EmotionNeutral,
			Status:             models.StatusPending,
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, rant); err != nil {
			t.Fatalf("create rant %d: %v", i, err)
		}
		rants = append(rants, rant)
	}

	listed, total, err := repo.ListForUser(ctx, owner.ID, 1, 2)
	if err != nil {
		t.Fatalf("list rants: %v", err)
	}
	if total != 3 || len(listed) != 2 {
		t.Fatalf("expected total 3 page of 2, got total %d len %d", total, len(listed))
	}
	if listed[0].ID != rants[2].ID {
		t.Fatalf("expected newest rant first, got %+v", listed[0])
	}

	if _, err := repo.FindForUser(ctx, rants[0].ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign rant, got %v", err)
	}

	processedAt := time.Now().UTC()
	analyzed := rants[0]
	analyzed.DetectedEmotion = models.EmotionFrustrated
	analyzed.EmotionConfidence = 0.8
	analyzed.SentimentScore = -0.5
	analyzed.Keywords = []string{"traffic", "number"}
	analyzed.Processed = true
	analyzed.Status = models.StatusCompleted
	analyzed.ProcessedAt = &processedAt

	if err := repo.SaveAnalysis(ctx, analyzed); err != nil {
		t.Fatalf("save analysis: %v", err)
	}

	fetched, err := repo.FindForUser(ctx, analyzed.ID, owner.ID)
	if err != nil {
		t.Fatalf("find analyzed rant: %v", err)
	}
	if fetched.DetectedEmotion != models.EmotionFrustrated || !fetched.Processed {
		t.Fatalf("expected analysis to persist, got %+v", fetched)
	}
	if len(fetched.Keywords) != 2 || fetched.Keywords[0] != "traffic" {
		t.Fatalf("expected keywords to round-trip, got %v", fetched.Keywords)
	}

	if err := repo.Delete(ctx, analyzed.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign rant, got %v", err)
	}
	if err := repo.Delete(ctx, analyzed.ID, owner.ID); err != nil {
		t.Fatalf("delete rant: %v", err)
	}
	if _, err := repo.FindForUser(ctx, analyzed.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresContentRepository_LatestListAndFavorite(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	owner := createTestUser(t, userRepo, "creator", "creator@example.com")

	rantRepo := NewPostgresRantRepository(testPool)
	rant := models.Rant{
		ID:                 uuid.NewString(),
		UserID:             owner.ID,
		Content:            "bad traffic today",
		InputType:          models.InputText,
		TransformationType: models.TransformPoem,
		Tone:               "neutral",
		Privacy:            models.PrivacyPrivate,
		Status:             models.StatusPending,
		CreatedAt:          time.Now().UTC().Add(-time.Hour),
	}
	if err := rantRepo.Create(ctx, rant); err != nil {
		t.Fatalf("create rant: %v", err)
	}

	repo := NewPostgresContentRepository(testPool)
	base := time.Now().UTC().Add(-30 * time.Minute)

	older := models.GeneratedContent{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		RantID:      rant.ID,
		ContentType: models.ContentText,
		Title:       "Poem (draft)",
		Body:        "first attempt",
		ModelUsed:   "local-template",
		CreatedAt:   base,
	}
	newer := older
	newer.ID = uuid.NewString()
	newer.Body = "second attempt"
	newer.CreatedAt = base.Add(5 * time.Minute)
	audio := models.GeneratedContent{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		RantID:      rant.ID,
		ContentType: models.ContentAudio,
		Body:        "data:audio/wav;base64,AAAA",
		ModelUsed:   "speech-synth",
		CreatedAt:   base.Add(10 * time.Minute),
	}

	for _, content := range []models.GeneratedContent{older, newer, audio} {
		if err := repo.Create(ctx, content); err != nil {
			t.Fatalf("create content %s: %v", content.ID, err)
		}
	}

	latest, err := repo.LatestTextForRant(ctx, rant.ID)
	if err != nil {
		t.Fatalf("latest text: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("expected newest text content, got %+v", latest)
	}

	all, total, err := repo.ListForUser(ctx, owner.ID, 1, 10, "")
	if err != nil {
		t.Fatalf("list all content: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 content rows, got total %d len %d", total, len(all))
	}

	texts, total, err := repo.ListForUser(ctx, owner.ID, 1, 10, models.ContentText)
	if err != nil {
		t.Fatalf("list text content: %v", err)
	}
	if total != 2 || len(texts) != 2 {
		t.Fatalf("expected 2 text rows, got total %d len %d", total, len(texts))
	}

	favorite, err := repo.ToggleFavorite(ctx, newer.ID, owner.ID)
	if err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if !favorite {
		t.Fatal("expected favorite to flip to true")
	}
	favorite, err = repo.ToggleFavorite(ctx, newer.ID, owner.ID)
	if err != nil {
		t.Fatalf("toggle favorite back: %v", err)
	}
	if favorite {
		t.Fatal("expected favorite to flip back to false")
	}
	if _, err := repo.ToggleFavorite(ctx, uuid.NewString(), owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown content, got %v", err)
	}

	if err := repo.SetArtifactURL(ctx, audio.ID, "https://cdn.example.com/a.wav"); err != nil {
		t.Fatalf("set artifact url: %v", err)
	}
}

func TestPostgresSessionStore_SaveFindAndDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, userRepo, "sessions", "sessions@example.com")

	store := NewPostgresSessionStore(testPool)
	expires := time.Now().UTC().Add(24 * time.Hour)
	session := models.Session{
		TokenID:   uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: expires,
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, err := store.Find(ctx, session.TokenID)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if loaded.UserID != session.UserID || !timesClose(loaded.ExpiresAt, expires.UTC(), time.Millisecond) {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	updated := session
	updated.ExpiresAt = expires.Add(48 * time.Hour)
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("update session: %v", err)
	}

	loaded, err = store.Find(ctx, session.TokenID)
	if err != nil {
		t.Fatalf("find session after update: %v", err)
	}
	if !timesClose(loaded.ExpiresAt, updated.ExpiresAt.UTC(), time.Millisecond) {
		t.Fatalf("expected updated expiry, got %v", loaded.ExpiresAt)
	}

	if err := store.Delete(ctx, session.TokenID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.Find(ctx, session.TokenID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, session.TokenID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE generated_content, rants, sessions, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username, email string) models.User {
	t.Helper()
	user := models.User{
		ID:              uuid.NewString(),
		Username:        username,
		Email:           email,
		PasswordHash:    "password-hash",
		AIPersonality:   "supportive",
		PreferredFormat: "text",
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
