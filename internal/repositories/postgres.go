package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rantsmith/backend/internal/db"
	"github.com/rantsmith/backend/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, password_hash, display_name, bio, ai_personality, preferred_format, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, user.ID, user.Username, user.Email, user.PasswordHash, user.DisplayName, user.Bio,
		user.AIPersonality, user.PreferredFormat, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

const userColumns = `id, username, email, password_hash, display_name, bio, ai_personality, preferred_format, created_at, last_login_at`

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByUsername fetches a user by their username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// FindByID fetches a user by their identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// UpdateProfile saves the user's editable profile fields.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET display_name = $2, bio = $3, ai_personality = $4, preferred_format = $5
        WHERE id = $1
    `, user.ID, user.DisplayName, user.Bio, user.AIPersonality, user.PreferredFormat)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the user's stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLogin stamps the user's last successful login time.
func (r *PostgresUserRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var user models.User
	err = conn.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.DisplayName,
		&user.Bio, &user.AIPersonality, &user.PreferredFormat, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// PostgresRantRepository provides PostgreSQL-backed persistence for rants.
type PostgresRantRepository struct {
	pool db.Pool
}

// NewPostgresRantRepository constructs a rant repository backed by PostgreSQL.
func NewPostgresRantRepository(pool db.Pool) *PostgresRantRepository {
	return &PostgresRantRepository{pool: pool}
}

// Create persists a new rant record.
func (r *PostgresRantRepository) Create(ctx context.Context, rant models.Rant) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	keywords, err := json.Marshal(rant.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO rants (id, user_id, content, input_type, transformation_type, tone, privacy,
                           detected_emotion, emotion_confidence, sentiment_score, keywords,
                           processed, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `, rant.ID, rant.UserID, rant.Content, rant.InputType, rant.TransformationType, rant.Tone,
		rant.Privacy, rant.DetectedEmotion, rant.EmotionConfidence, rant.SentimentScore,
		string(keywords), rant.Processed, rant.Status, rant.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert rant: %w", err)
	}

	return nil
}

const rantColumns = `id, user_id, content, input_type, transformation_type, tone, privacy,
        detected_emotion, emotion_confidence, sentiment_score, keywords, processed, status,
        created_at, processed_at`

// FindForUser fetches a rant owned by the given user.
func (r *PostgresRantRepository) FindForUser(ctx context.Context, id, userID string) (models.Rant, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Rant{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+rantColumns+` FROM rants WHERE id = $1 AND user_id = $2`, id, userID)
	return scanRant(row)
}

// ListForUser returns a page of the user's rants, newest first, plus the total count.
func (r *PostgresRantRepository) ListForUser(ctx context.Context, userID string, page, perPage int) ([]models.Rant, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM rants WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rants: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+rantColumns+`
        FROM rants
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("select rants: %w", err)
	}
	defer rows.Close()

	var rants []models.Rant
	for rows.Next() {
		rant, err := scanRant(rows)
		if err != nil {
			return nil, 0, err
		}
		rants = append(rants, rant)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rants: %w", err)
	}

	return rants, total, nil
}

// Delete removes a rant owned by the given user.
func (r *PostgresRantRepository) Delete(ctx context.Context, id, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM rants WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete rant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveAnalysis stores the analyzer's verdict on a processed rant.
func (r *PostgresRantRepository) SaveAnalysis(ctx context.Context, rant models.Rant) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	keywords, err := json.Marshal(rant.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	tag, err := conn.Exec(ctx, `
        UPDATE rants
        SET detected_emotion = $3, emotion_confidence = $4, sentiment_score = $5,
            keywords = $6, processed = $7, status = $8, processed_at = $9
        WHERE id = $1 AND user_id = $2
    `, rant.ID, rant.UserID, rant.DetectedEmotion, rant.EmotionConfidence, rant.SentimentScore,
		string(keywords), rant.Processed, rant.Status, rant.ProcessedAt)
	if err != nil {
		return fmt.Errorf("update rant analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRant(row rowScanner) (models.Rant, error) {
	var rant models.Rant
	var keywords string
	err := row.Scan(
		&rant.ID, &rant.UserID, &rant.Content, &rant.InputType, &rant.TransformationType,
		&rant.Tone, &rant.Privacy, &rant.DetectedEmotion, &rant.EmotionConfidence,
		&rant.SentimentScore, &keywords, &rant.Processed, &rant.Status,
		&rant.CreatedAt, &rant.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Rant{}, ErrNotFound
		}
		return models.Rant{}, fmt.Errorf("scan rant: %w", err)
	}
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &rant.Keywords); err != nil {
			return models.Rant{}, fmt.Errorf("decode keywords: %w", err)
		}
	}
	return rant, nil
}

// PostgresContentRepository provides PostgreSQL-backed persistence for generated content.
type PostgresContentRepository struct {
	pool db.Pool
}

// NewPostgresContentRepository constructs a content repository backed by PostgreSQL.
func NewPostgresContentRepository(pool db.Pool) *PostgresContentRepository {
	return &PostgresContentRepository{pool: pool}
}

// Create persists a new generated content record.
func (r *PostgresContentRepository) Create(ctx context.Context, content models.GeneratedContent) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO generated_content (id, user_id, rant_id, content_type, title, body,
                                       artifact_url, model_used, processing_ms, is_favorite, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, content.ID, content.UserID, content.RantID, content.ContentType, content.Title,
		content.Body, content.ArtifactURL, content.ModelUsed,
		content.ProcessingTime.Milliseconds(), content.IsFavorite, content.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert generated content: %w", err)
	}

	return nil
}

const contentColumns = `id, user_id, rant_id, content_type, title, body, artifact_url,
        model_used, processing_ms, is_favorite, created_at`

// LatestTextForRant returns the newest text output generated for a rant.
func (r *PostgresContentRepository) LatestTextForRant(ctx context.Context, rantID string) (models.GeneratedContent, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.GeneratedContent{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+contentColumns+`
        FROM generated_content
        WHERE rant_id = $1 AND content_type = $2
        ORDER BY created_at DESC
        LIMIT 1
    `, rantID, models.ContentText)
	return scanContent(row)
}

// ListForUser returns a page of the user's generated content, newest first.
// An empty contentType matches every type.
func (r *PostgresContentRepository) ListForUser(ctx context.Context, userID string, page, perPage int, contentType string) ([]models.GeneratedContent, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM generated_content
        WHERE user_id = $1 AND ($2 = '' OR content_type = $2)
    `, userID, contentType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count generated content: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+contentColumns+`
        FROM generated_content
        WHERE user_id = $1 AND ($2 = '' OR content_type = $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `, userID, contentType, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("select generated content: %w", err)
	}
	defer rows.Close()

	var contents []models.GeneratedContent
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, 0, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate generated content: %w", err)
	}

	return contents, total, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (r *PostgresContentRepository) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var favorite bool
	err = conn.QueryRow(ctx, `
        UPDATE generated_content
        SET is_favorite = NOT is_favorite
        WHERE id = $1 AND user_id = $2
        RETURNING is_favorite
    `, id, userID).Scan(&favorite)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle favorite: %w", err)
	}

	return favorite, nil
}

// SetArtifactURL records the stored location of a generated media artifact.
func (r *PostgresContentRepository) SetArtifactURL(ctx context.Context, id, url string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE generated_content SET artifact_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("update artifact url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContent(row rowScanner) (models.GeneratedContent, error) {
	var content models.GeneratedContent
	var processingMS int64
	err := row.Scan(
		&content.ID, &content.UserID, &content.RantID, &content.ContentType, &content.Title,
		&content.Body, &content.ArtifactURL, &content.ModelUsed, &processingMS,
		&content.IsFavorite, &content.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GeneratedContent{}, ErrNotFound
		}
		return models.GeneratedContent{}, fmt.Errorf("scan generated content: %w", err)
	}
	content.ProcessingTime = time.Duration(processingMS) * time.Millisecond
	return content, nil
}
