package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// User mirrors the server's user payload.
type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	DisplayName     string `json:"display_name,omitempty"`
	Bio             string `json:"bio,omitempty"`
	AIPersonality   string `json:"ai_personality"`
	PreferredFormat string `json:"preferred_format"`
}

// Rant mirrors the server's rant payload.
type Rant struct {
	ID                 string   `json:"id"`
	Content            string   `json:"content"`
	InputType          string   `json:"input_type"`
	TransformationType string   `json:"transformation_type"`
	Tone               string   `json:"tone"`
	Privacy            string   `json:"privacy"`
	DetectedEmotion    string   `json:"detected_emotion,omitempty"`
	Keywords           []string `json:"keywords,omitempty"`
	Processed          bool     `json:"processed"`
	Status             string   `json:"status"`
	CreatedAt          string   `json:"created_at"`
}

type authPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and returns the issued token and user.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, User, error) {
	var resp authPayload
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", User{}, err
	}
	return resp.Token, resp.User, nil
}

// Login authenticates and returns the issued token and user.
func (c *Client) Login(ctx context.Context, email, password string) (string, User, error) {
	var resp authPayload
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return "", User{}, err
	}
	return resp.Token, resp.User, nil
}

// Logout revokes the current session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser fetches the account owning the current token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/user", nil, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// SubmitRantInput is the payload for SubmitRant.
type SubmitRantInput struct {
	Content            string `json:"content"`
	TransformationType string `json:"transformation_type,omitempty"`
	Tone               string `json:"tone,omitempty"`
	Privacy            string `json:"privacy,omitempty"`
	InputType          string `json:"input_type,omitempty"`
}

// SubmitRant stores a new rant and returns its id.
func (c *Client) SubmitRant(ctx context.Context, input SubmitRantInput) (string, Rant, error) {
	var resp struct {
		RantID string `json:"rant_id"`
		Rant   Rant   `json:"rant"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/rant/submit", input, &resp); err != nil {
		return "", Rant{}, err
	}
	return resp.RantID, resp.Rant, nil
}

// History returns one page of the caller's rants, newest first.
func (c *Client) History(ctx context.Context, page, perPage int) ([]Rant, int, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", fmt.Sprint(page))
	}
	if perPage > 0 {
		query.Set("per_page", fmt.Sprint(perPage))
	}
	path := "/api/rant/history"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp struct {
		Rants []Rant `json:"rants"`
		Total int    `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Rants, resp.Total, nil
}

// DeleteRant removes one of the caller's rants.
func (c *Client) DeleteRant(ctx context.Context, rantID string) error {
	return c.do(ctx, http.MethodDelete, "/api/rant/"+url.PathEscape(rantID), nil, nil)
}

// TransformResult is the primary output of a transformation.
type TransformResult struct {
	Text      string `json:"text"`
	ModelUsed string `json:"model_used"`
}

// TransformWithAI renders the rant into the requested format and tone.
func (c *Client) TransformWithAI(ctx context.Context, rantID, transformationType, tone string) (TransformResult, error) {
	var resp TransformResult
	err := c.do(ctx, http.MethodPost, "/api/media/transform-with-ai/"+url.PathEscape(rantID), map[string]string{
		"transformation_type": transformationType,
		"tone":                tone,
	}, &resp)
	return resp, err
}

// GenerateSpeech returns a data URL audio rendition of the rant's text.
func (c *Client) GenerateSpeech(ctx context.Context, rantID string) (string, error) {
	var resp struct {
		AudioData string `json:"audio_data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/media/generate-speech/"+url.PathEscape(rantID), nil, &resp)
	return resp.AudioData, err
}

// GenerateMeme returns a data URL caption card for the rant's text.
func (c *Client) GenerateMeme(ctx context.Context, rantID string) (string, error) {
	var resp struct {
		ImageData string `json:"image_data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/media/generate-meme/"+url.PathEscape(rantID), nil, &resp)
	return resp.ImageData, err
}

// GenerateVideo returns a data URL animated clip for the rant's text.
func (c *Client) GenerateVideo(ctx context.Context, rantID string) (string, error) {
	var resp struct {
		VideoData string `json:"video_data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/media/generate-video/"+url.PathEscape(rantID), nil, &resp)
	return resp.VideoData, err
}

// ChatReply is the companion's answer to one message.
type ChatReply struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	ModelUsed      string `json:"model_used"`
}

// Chat sends one companion message.
func (c *Client) Chat(ctx context.Context, message, conversationID, personality string) (ChatReply, error) {
	var resp ChatReply
	err := c.do(ctx, http.MethodPost, "/api/ai/chat", map[string]string{
		"message":         message,
		"conversation_id": conversationID,
		"personality":     personality,
	}, &resp)
	return resp, err
}

// Health checks the service.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
