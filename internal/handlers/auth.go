package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/repositories"
)

// AuthHandler implements user authentication endpoints.
type AuthHandler struct {
	Users   UserStore
	Tokens  SessionManager
	Limiter RateLimiter
	NowFunc func() time.Time
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	AIPersonality   string `json:"ai_personality"`
	PreferredFormat string `json:"preferred_format"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

// Register handles POST /auth/register requests.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasTokens", h.Tokens != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, slow down"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if msg := validateUsername(req.Username); msg != "" {
		logger.Warn("register invalid username", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("register invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		logger.Warn("register weak password", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	if _, err := h.Users.FindByUsername(ctx, req.Username); err == nil {
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "username already taken"})
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register username lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify existing accounts"})
		return
	}
	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register email lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to verify existing accounts"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	user := models.User{
		ID:              uuid.NewString(),
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    string(hashed),
		AIPersonality:   models.PersonalitySupportive,
		PreferredFormat: models.TransformPoem,
		CreatedAt:       h.now(),
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "account already exists"})
			return
		}
		logger.Error("register failed to create user", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	token, err := h.Tokens.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("register failed to issue token", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, authResponse{Token: token, User: toUserPayload(user)})
}

// Login handles POST /auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasTokens", h.Tokens != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many attempts, slow down"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("login user lookup failed", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := h.Tokens.Issue(ctx, user.ID)
	if err != nil {
		logger.Error("failed to issue token", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	if err := h.Users.RecordLogin(ctx, user.ID, h.now()); err != nil {
		logger.Warn("failed to record login time", "error", err, "userId", user.ID)
	}

	respondJSON(ctx, w, http.StatusOK, authResponse{Token: token, User: toUserPayload(user)})
}

// Logout handles POST /auth/logout requests. The session backing the bearer
// token is deleted so the token stops working before its expiry.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if _, ok := requireUser(w, r, h.Tokens); !ok {
		return
	}

	h.Tokens.Revoke(ctx, bearerToken(r))
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "logged out"})
}

// CurrentUser handles GET /auth/user requests.
func (h AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("current user lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]userPayload{"user": toUserPayload(user)})
}

type profileRequest struct {
	DisplayName     *string `json:"display_name"`
	Bio             *string `json:"bio"`
	AIPersonality   *string `json:"ai_personality"`
	PreferredFormat *string `json:"preferred_format"`
}

// Profile handles GET and PUT /auth/profile requests. PUT updates only the
// fields present in the payload.
func (h AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requireUser(w, r, h.Tokens)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(ctx, w, http.StatusOK, map[string]userPayload{"user": toUserPayload(user)})

	case http.MethodPut:
		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		if req.DisplayName != nil {
			user.DisplayName = strings.TrimSpace(*req.DisplayName)
		}
		if req.Bio != nil {
			user.Bio = strings.TrimSpace(*req.Bio)
		}
		if req.AIPersonality != nil {
			if !models.ValidPersonality(*req.AIPersonality) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown personality"})
				return
			}
			user.AIPersonality = *req.AIPersonality
		}
		if req.PreferredFormat != nil {
			if !models.ValidTransformationType(*req.PreferredFormat) {
				respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown preferred format"})
				return
			}
			user.PreferredFormat = *req.PreferredFormat
		}

		if err := h.Users.UpdateProfile(ctx, user); err != nil {
			logging.FromContext(ctx).Error("profile update failed", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update profile"})
			return
		}

		respondJSON(ctx, w, http.StatusOK, map[string]any{
			"message": "profile updated",
			"user":    toUserPayload(user),
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /auth/change-password requests. The current
// password must verify before the new one is accepted.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
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

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "current and new passwords are required"})
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("change password lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "account not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		logger.Warn("change password mismatch", "userId", userID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "current password is incorrect"})
		return
	}
	if msg := validatePassword(req.NewPassword); msg != "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("change password failed to hash", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	if err := h.Users.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		logger.Error("change password update failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to change password"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "password changed"})
}

func toUserPayload(user models.User) userPayload {
	return userPayload{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		DisplayName:     user.DisplayName,
		Bio:             user.Bio,
		AIPersonality:   user.AIPersonality,
		PreferredFormat: user.PreferredFormat,
	}
}

func validateUsername(username string) string {
	if len(username) < 3 || len(username) > 20 {
		return "username must be between 3 and 20 characters"
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "username may only contain letters, numbers, and underscores"
		}
		if r > unicode.MaxASCII {
			return "username may only contain letters, numbers, and underscores"
		}
	}
	return ""
}

func validatePassword(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "password must contain an uppercase letter, a lowercase letter, and a digit"
	}
	return ""
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
