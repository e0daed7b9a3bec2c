package repositories

import (
	"context"
	"time"

	"github.com/rantsmith/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
