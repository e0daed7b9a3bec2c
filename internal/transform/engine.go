package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
)

// Engine transforms rants using the configured provider, falling back to the
// local templates when the provider is absent, fails, or returns nothing.
type Engine struct {
	provider Provider
}

// NewEngine constructs an Engine. provider may be nil, in which case every
// transformation is rendered locally.
func NewEngine(provider Provider) *Engine {
	return &Engine{provider: provider}
}

// Transform renders the request. It never fails: any provider error downgrades
// the result to the local templates.
func (e *Engine) Transform(ctx context.Context, req Request) Result {
	if e.provider != nil {
		text, err := e.provider.Generate(ctx, buildPrompt(req))
		if err != nil {
			logging.FromContext(ctx).Warn("remote transform failed, using local templates",
				"provider", e.provider.Name(), "type", req.Type, "error", err)
		} else if strings.TrimSpace(text) != "" {
			return Result{Text: strings.TrimSpace(text), ModelUsed: e.provider.Name()}
		}
	}

	return Result{
		Text:      LocalTemplates(req.Content, req.Type, req.Tone),
		ModelUsed: LocalModelName,
	}
}

func buildPrompt(req Request) string {
	var goal string
	switch req.Type {
	case models.TransformPoem:
		goal = "a beautiful, meaningful poem that captures the essence of the feelings expressed, uses poetic language and imagery, and provides comfort or insight"
	case models.TransformRap:
		goal = "rap verses with confident flow and internal rhyme that keep the core emotion and meaning"
	case models.TransformStory:
		goal = "a short, uplifting story with a hopeful resolution that reflects the emotions expressed"
	case models.TransformSong:
		goal = "song lyrics with a clear verse-chorus structure that capture the emotional essence and flow well musically"
	case models.TransformMotivational:
		goal = "an inspiring, motivational message that acknowledges the feelings, provides encouragement and hope, and offers practical perspective"
	case models.TransformComedy:
		goal = "a lighthearted comedic retelling that finds the humor without dismissing the feelings"
	default:
		goal = "a rewritten version that keeps the core emotion and meaning"
	}

	return fmt.Sprintf(
		"Transform the following emotional content into %s.\nUse a %s tone.\n\n%q\n\nReturn only the transformed text, no additional commentary.",
		goal, req.Tone, req.Content,
	)
}
