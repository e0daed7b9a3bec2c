package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rantsmith/backend/internal/models"
)

var (
	// ErrTokenInvalid indicates the bearer token could not be parsed or verified.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates the bearer token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrSessionNotFound indicates the token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStore persists issued token sessions so logout can revoke them before expiry.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, tokenID string) (models.Session, error)
	Delete(ctx context.Context, tokenID string) error
}

// TokenManager issues and verifies HS256 bearer tokens backed by a session store.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	store  SessionStore

	nowFunc func() time.Time
}

// NewTokenManager constructs a TokenManager signing tokens with the provided
// secret and TTL. The store must not be nil.
func NewTokenManager(secret string, ttl time.Duration, store SessionStore) *TokenManager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		store:   store,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

type claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issue creates a signed bearer token for the provided user and records the
// session so it can be revoked later.
func (m *TokenManager) Issue(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id must be provided")
	}

	now := m.nowFunc()
	tokenID := uuid.NewString()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := m.store.Save(ctx, models.Session{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return signed, nil
}

// Verify parses the bearer token and confirms its session is still active.
// It returns the owning user id on success.
func (m *TokenManager) Verify(ctx context.Context, bearer string) (string, error) {
	if bearer == "" {
		return "", ErrTokenInvalid
	}

	var parsed claims
	token, err := jwt.ParseWithClaims(bearer, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || parsed.UserID == "" || parsed.ID == "" {
		return "", ErrTokenInvalid
	}

	session, err := m.store.Find(ctx, parsed.ID)
	if err != nil {
		return "", err
	}
	if m.nowFunc().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, parsed.ID)
		return "", ErrTokenExpired
	}

	return session.UserID, nil
}

// Revoke removes the session backing the bearer token. Unknown or malformed
// tokens are ignored so logout is always safe to call.
func (m *TokenManager) Revoke(ctx context.Context, bearer string) {
	tokenID := m.tokenID(bearer)
	if tokenID == "" {
		return
	}
	_ = m.store.Delete(ctx, tokenID)
}

func (m *TokenManager) tokenID(bearer string) string {
	var parsed claims
	_, err := jwt.ParseWithClaims(bearer, &parsed, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return ""
	}
	return parsed.ID
}
