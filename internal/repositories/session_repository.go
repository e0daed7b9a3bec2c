package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rantsmith/backend/internal/auth"
	"github.com/rantsmith/backend/internal/db"
	"github.com/rantsmith/backend/internal/models"
)

// PostgresSessionStore persists issued token sessions to PostgreSQL.
type PostgresSessionStore struct {
	pool db.Pool
}

// NewPostgresSessionStore constructs a session store backed by PostgreSQL.
func NewPostgresSessionStore(pool db.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// Save stores or updates a session record.
func (s *PostgresSessionStore) Save(ctx context.Context, session models.Session) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO sessions (token_id, user_id, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (token_id)
        DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at
    `, session.TokenID, session.UserID, session.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// Find loads a session by its token id.
func (s *PostgresSessionStore) Find(ctx context.Context, tokenID string) (models.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT token_id, user_id, expires_at
        FROM sessions
        WHERE token_id = $1
    `, tokenID)

	var session models.Session
	var expiresAt time.Time
	if err := row.Scan(&session.TokenID, &session.UserID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, auth.ErrSessionNotFound
		}
		return models.Session{}, fmt.Errorf("select session: %w", err)
	}

	session.ExpiresAt = expiresAt.UTC()
	return session, nil
}

// Delete removes a session by its token id.
func (s *PostgresSessionStore) Delete(ctx context.Context, tokenID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM sessions
        WHERE token_id = $1
    `, tokenID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}

	return nil
}
