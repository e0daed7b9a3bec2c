// Package transform turns raw rant text into a chosen creative format.
//
// The engine prefers a remote generative model when one is configured and
// always falls back to deterministic local templates, so a transformation
// request never fails outright.
package transform

import "context"

// Provider generates free-form text from a prompt. Implementations may call a
// remote model; they should honor ctx cancellation.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Request describes one transformation of a rant.
type Request struct {
	RantID  string
	Content string
	Type    string
	Tone    string
}

// Result carries the transformed text and which model produced it.
type Result struct {
	Text      string `json:"text"`
	ModelUsed string `json:"model_used"`
}

// Transformer renders a rant into its target format.
type Transformer interface {
	Transform(ctx context.Context, req Request) Result
}
