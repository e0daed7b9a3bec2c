package client

import (
	"context"
	"log/slog"
	"sync"
)

// SessionState describes where the session holder is in its lifecycle.
type SessionState int

const (
	StateUnknown SessionState = iota
	StateChecking
	StateAuthenticated
	StateAnonymous
)

func (s SessionState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthResult carries the outcome of a login or register attempt. Recoverable
// failures (bad credentials, validation, server errors) are reported here
// rather than as an error.
type AuthResult struct {
	OK      bool
	Message string
	User    User
}

// SessionHolder tracks authentication state for one client. A holder is
// Authenticated exactly when the client carries a token.
type SessionHolder struct {
	client *Client
	logger *slog.Logger

	mu    sync.RWMutex
	state SessionState
	user  User
}

// NewSessionHolder wraps the client in the Unknown state.
func NewSessionHolder(c *Client, logger *slog.Logger) *SessionHolder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHolder{client: c, logger: logger, state: StateUnknown}
}

// State returns the current session state.
func (h *SessionHolder) State() SessionState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// User returns the authenticated account, valid only in StateAuthenticated.
func (h *SessionHolder) User() User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.user
}

// Resume validates any stored token on startup. With no stored token the
// holder goes straight to Anonymous; otherwise it passes through Checking and
// lands in Authenticated or, after clearing the stale token, Anonymous.
func (h *SessionHolder) Resume(ctx context.Context) SessionState {
	if h.client.Token() == "" {
		h.setAnonymous()
		return StateAnonymous
	}

	h.setState(StateChecking)

	user, err := h.client.CurrentUser(ctx)
	if err != nil {
		h.logger.Info("stored session rejected, clearing token", "error", err)
		if clearErr := h.client.ClearToken(); clearErr != nil {
			h.logger.Warn("failed to clear stale token", "error", clearErr)
		}
		h.setAnonymous()
		return StateAnonymous
	}

	h.setAuthenticated(user)
	return StateAuthenticated
}

// Login authenticates with credentials. Failures are carried in the result.
func (h *SessionHolder) Login(ctx context.Context, email, password string) AuthResult {
	token, user, err := h.client.Login(ctx, email, password)
	return h.finishAuth(token, user, err)
}

// Register creates an account. Failures are carried in the result.
func (h *SessionHolder) Register(ctx context.Context, username, email, password string) AuthResult {
	token, user, err := h.client.Register(ctx, username, email, password)
	return h.finishAuth(token, user, err)
}

func (h *SessionHolder) finishAuth(token string, user User, err error) AuthResult {
	if err != nil {
		return AuthResult{OK: false, Message: failureMessage(err)}
	}
	if storeErr := h.client.SetToken(token); storeErr != nil {
		h.logger.Warn("failed to persist token", "error", storeErr)
	}
	h.setAuthenticated(user)
	return AuthResult{OK: true, User: user}
}

// Logout revokes the session server-side when possible and always clears
// local state.
func (h *SessionHolder) Logout(ctx context.Context) {
	if h.client.Token() != "" {
		if err := h.client.Logout(ctx); err != nil {
			h.logger.Warn("server logout failed, clearing local session anyway", "error", err)
		}
	}
	if err := h.client.ClearToken(); err != nil {
		h.logger.Warn("failed to clear token", "error", err)
	}
	h.setAnonymous()
}

func (h *SessionHolder) setState(state SessionState) {
	h.mu.Lock()
	h.state = state
	h.mu.Unlock()
}

func (h *SessionHolder) setAuthenticated(user User) {
	h.mu.Lock()
	h.state = StateAuthenticated
	h.user = user
	h.mu.Unlock()
}

func (h *SessionHolder) setAnonymous() {
	h.mu.Lock()
	h.state = StateAnonymous
	h.user = User{}
	h.mu.Unlock()
}

func failureMessage(err error) string {
	if reqErr, ok := err.(*RequestError); ok {
		return reqErr.Message
	}
	return err.Error()
}
