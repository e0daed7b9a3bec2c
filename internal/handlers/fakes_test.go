package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rantsmith/backend/internal/chat"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/repositories"
	"github.com/rantsmith/backend/internal/transform"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	existing.DisplayName = user.DisplayName
	existing.Bio = user.Bio
	existing.AIPersonality = user.AIPersonality
	existing.PreferredFormat = user.PreferredFormat
	s.users[user.ID] = existing
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) RecordLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.LastLoginAt = &at
	s.users[id] = user
	return nil
}

type fakeRantStore struct {
	mu    sync.Mutex
	rants map[string]models.Rant
}

func newFakeRantStore() *fakeRantStore {
	return &fakeRantStore{rants: make(map[string]models.Rant)}
}

func (s *fakeRantStore) Create(_ context.Context, rant models.Rant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rants[rant.ID] = rant
	return nil
}

func (s *fakeRantStore) FindForUser(_ context.Context, id, userID string) (models.Rant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rant, ok := s.rants[id]
	if !ok || rant.UserID != userID {
		return models.Rant{}, repositories.ErrNotFound
	}
	return rant, nil
}

func (s *fakeRantStore) ListForUser(_ context.Context, userID string, page, perPage int) ([]models.Rant, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []models.Rant
	for _, rant := range s.rants {
		if rant.UserID == userID {
			owned = append(owned, rant)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	total := len(owned)
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (s *fakeRantStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rant, ok := s.rants[id]
	if !ok || rant.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(s.rants, id)
	return nil
}

func (s *fakeRantStore) SaveAnalysis(_ context.Context, rant models.Rant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rants[rant.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.rants[rant.ID] = rant
	return nil
}

type fakeContentStore struct {
	mu       sync.Mutex
	contents map[string]models.GeneratedContent
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{contents: make(map[string]models.GeneratedContent)}
}

func (s *fakeContentStore) Create(_ context.Context, content models.GeneratedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents[content.ID] = content
	return nil
}

func (s *fakeContentStore) LatestTextForRant(_ context.Context, rantID string) (models.GeneratedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest models.GeneratedContent
	found := false
	for _, content := range s.contents {
		if content.RantID != rantID || content.ContentType != models.ContentText {
			continue
		}
		if !found || content.CreatedAt.After(latest.CreatedAt) {
			latest = content
			found = true
		}
	}
	if !found {
		return models.GeneratedContent{}, repositories.ErrNotFound
	}
	return latest, nil
}

func (s *fakeContentStore) ListForUser(_ context.Context, userID string, page, perPage int, contentType string) ([]models.GeneratedContent, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []models.GeneratedContent
	for _, content := range s.contents {
		if content.UserID != userID {
			continue
		}
		if contentType != "" && content.ContentType != contentType {
			continue
		}
		owned = append(owned, content)
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })

	total := len(owned)
	start := (page - 1) * perPage
	if start >= total {
		return nil, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (s *fakeContentStore) ToggleFavorite(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.contents[id]
	if !ok || content.UserID != userID {
		return false, repositories.ErrNotFound
	}
	content.IsFavorite = !content.IsFavorite
	s.contents[id] = content
	return content.IsFavorite, nil
}

func (s *fakeContentStore) SetArtifactURL(_ context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.contents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	content.ArtifactURL = url
	s.contents[id] = content
	return nil
}

func (s *fakeContentStore) byType(contentType string) []models.GeneratedContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.GeneratedContent
	for _, content := range s.contents {
		if content.ContentType == contentType {
			matched = append(matched, content)
		}
	}
	return matched
}

// fakeSessions verifies tokens against a fixed map and records revocations.
type fakeSessions struct {
	mu      sync.Mutex
	byToken map[string]string
	issued  int
	revoked []string
}

func newFakeSessions(byToken map[string]string) *fakeSessions {
	if byToken == nil {
		byToken = make(map[string]string)
	}
	return &fakeSessions{byToken: byToken}
}

func (s *fakeSessions) Issue(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	token := fmt.Sprintf("token-%d", s.issued)
	s.byToken[token] = userID
	return token, nil
}

func (s *fakeSessions) Verify(_ context.Context, bearer string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID, ok := s.byToken[bearer]; ok {
		return userID, nil
	}
	return "", fmt.Errorf("unknown token")
}

func (s *fakeSessions) Revoke(_ context.Context, bearer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, bearer)
	s.revoked = append(s.revoked, bearer)
}

type fakeTransformer struct {
	result transform.Result
	calls  int
}

func (t *fakeTransformer) Transform(context.Context, transform.Request) transform.Result {
	t.calls++
	return t.result
}

type fakeResponder struct {
	reply chat.Reply
}

func (r *fakeResponder) Respond(context.Context, string, string) chat.Reply {
	return r.reply
}
