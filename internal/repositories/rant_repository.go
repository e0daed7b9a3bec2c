package repositories

import (
	"context"

	"github.com/rantsmith/backend/internal/models"
)

// RantRepository defines the data access contract for rants.
type RantRepository interface {
	Create(ctx context.Context, rant models.Rant) error
	FindForUser(ctx context.Context, id, userID string) (models.Rant, error)
	ListForUser(ctx context.Context, userID string, page, perPage int) ([]models.Rant, int, error)
	Delete(ctx context.Context, id, userID string) error
	SaveAnalysis(ctx context.Context, rant models.Rant) error
}

// ContentRepository defines the data access contract for generated content.
type ContentRepository interface {
	Create(ctx context.Context, content models.GeneratedContent) error
	LatestTextForRant(ctx context.Context, rantID string) (models.GeneratedContent, error)
	ListForUser(ctx context.Context, userID string, page, perPage int, contentType string) ([]models.GeneratedContent, int, error)
	ToggleFavorite(ctx context.Context, id, userID string) (bool, error)
	SetArtifactURL(ctx context.Context, id, url string) error
}
