// Package client is the Go client for the RantSmith API. It owns token
// storage, request shaping, and error normalization; higher-level flows
// (session, orchestrator, chat) build on it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RequestError is the single failure shape surfaced by the client. A zero
// StatusCode means the request never reached the server.
type RequestError struct {
	Message    string
	StatusCode int
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// TokenStore durably persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a file under the user's home directory.
type FileTokenStore struct {
	Path string
}

// DefaultTokenStore returns a FileTokenStore at ~/.rantsmith/token.
func DefaultTokenStore() *FileTokenStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &FileTokenStore{Path: filepath.Join(home, ".rantsmith", "token")}
}

func (s *FileTokenStore) Load() (string, error) {
	raw, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// MemoryTokenStore holds the token in memory only. Used in tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Client talks to one configured RantSmith backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithTokenStore overrides the durable token store.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.store = store }
}

// New constructs a client for the single configured base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		store:   DefaultTokenStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if token, err := c.store.Load(); err == nil && token != "" {
		c.token = token
	}
	return c
}

// Token returns the in-memory bearer token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken updates the in-memory token and the durable store.
func (c *Client) SetToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.store.Save(token)
}

// ClearToken drops the token from memory and the durable store.
func (c *Client) ClearToken() error {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return c.store.Clear()
}

// do performs a JSON request. Non-2xx responses and transport failures are
// normalized into *RequestError; a decoded success body lands in out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("build request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RequestError{Message: "network error: unable to reach the server"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return &RequestError{Message: "network error: failed to read response", StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Message: errorMessage(raw, resp), StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &RequestError{Message: "malformed response from server", StatusCode: resp.StatusCode}
		}
	}
	return nil
}

// errorMessage prefers the server's error or message field, falling back to
// the HTTP status line.
func errorMessage(raw []byte, resp *http.Response) string {
	var decoded struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Error != "" {
			return decoded.Error
		}
		if decoded.Message != "" {
			return decoded.Message
		}
	}
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
