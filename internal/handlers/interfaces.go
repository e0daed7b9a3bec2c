package handlers

import (
	"context"
	"io"
	"time"

	"github.com/rantsmith/backend/internal/chat"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/transform"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// SessionManager issues, verifies, and revokes bearer tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (string, error)
	Verify(ctx context.Context, bearer string) (string, error)
	Revoke(ctx context.Context, bearer string)
}

// RantStore captures persistence for submitted rants.
type RantStore interface {
	Create(ctx context.Context, rant models.Rant) error
	FindForUser(ctx context.Context, id, userID string) (models.Rant, error)
	ListForUser(ctx context.Context, userID string, page, perPage int) ([]models.Rant, int, error)
	Delete(ctx context.Context, id, userID string) error
	SaveAnalysis(ctx context.Context, rant models.Rant) error
}

// ContentStore captures persistence for generated content.
type ContentStore interface {
	Create(ctx context.Context, content models.GeneratedContent) error
	LatestTextForRant(ctx context.Context, rantID string) (models.GeneratedContent, error)
	ListForUser(ctx context.Context, userID string, page, perPage int, contentType string) ([]models.GeneratedContent, int, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	SetArtifactURL(ctx context.Context, id, url string) error
}

// Transformer renders a rant into a creative format.
type Transformer interface {
	Transform(ctx context.Context, req transform.Request) transform.Result
}

// ChatResponder produces companion replies.
type ChatResponder interface {
	Respond(ctx context.Context, message, personality string) chat.Reply
}

// Transcriber converts uploaded audio into rant text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, r io.Reader) (string, error)
}

// ArtifactStorage persists generated artifacts and uploads.
type ArtifactStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}
