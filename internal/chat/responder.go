// Package chat implements the conversational companion. Replies come from the
// configured model provider when one is available and fall back to canned
// personality lines otherwise, so the companion always answers.
package chat

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
	"github.com/rantsmith/backend/internal/transform"
)

// FallbackModelName is recorded on replies produced without a provider.
const FallbackModelName = "local-companion"

var greetings = map[string]string{
	models.PersonalitySupportive:   "Hey there! I'm here to listen. What's on your mind today?",
	models.PersonalitySarcastic:    "Oh great, another human with feelings. Go ahead, I'm all ears.",
	models.PersonalityHumorous:     "Welcome to the venting zone! Leave your worries at the door, or better yet, hand them to me.",
	models.PersonalityMotivational: "You showed up, and that's already a win! Tell me what's going on.",
	models.PersonalityProfessional: "Good day. I'm ready to discuss whatever is concerning you.",
}

var fallbackLines = map[string][]string{
	models.PersonalitySupportive: {
		"That sounds really tough. I'm here for you.",
		"Your feelings are completely valid. Tell me more.",
		"Thank you for sharing that with me. How are you holding up?",
	},
	models.PersonalitySarcastic: {
		"Wow, that's rough. Have you tried turning your life off and on again?",
		"Ah yes, the universe conspiring against you specifically. Classic.",
		"Sounds terrible. At least you have me to complain to.",
	},
	models.PersonalityHumorous: {
		"If your life were a sitcom, this would definitely be a season finale.",
		"On a scale of one to Mondays, how bad is it really?",
		"I'd offer you a virtual cookie, but my oven is made of code.",
	},
	models.PersonalityMotivational: {
		"Every setback is a setup for a comeback. You've got this!",
		"Storms don't last forever, but tough people do.",
		"This is just one chapter, not your whole story. Keep going!",
	},
	models.PersonalityProfessional: {
		"I understand. Let's break that down into manageable parts.",
		"That is a reasonable concern. What outcome would you like to see?",
		"Noted. What options have you considered so far?",
	},
}

// Reply is one companion response with the model that produced it.
type Reply struct {
	Text      string `json:"message"`
	ModelUsed string `json:"model_used"`
}

// Responder generates companion replies for a given personality.
type Responder struct {
	provider transform.Provider
}

// NewResponder wires an optional provider. A nil provider yields canned lines.
func NewResponder(provider transform.Provider) *Responder {
	return &Responder{provider: provider}
}

// Greeting returns the opening line for the personality.
func Greeting(personality string) string {
	if text, ok := greetings[personality]; ok {
		return text
	}
	return greetings[models.PersonalitySupportive]
}

// Respond produces a reply to the user's message in the requested personality.
// Provider failures degrade to a deterministic canned line.
func (r *Responder) Respond(ctx context.Context, message, personality string) Reply {
	if !models.ValidPersonality(personality) {
		personality = models.PersonalitySupportive
	}

	if r.provider != nil {
		text, err := r.provider.Generate(ctx, buildPrompt(message, personality))
		if err == nil && strings.TrimSpace(text) != "" {
			return Reply{Text: strings.TrimSpace(text), ModelUsed: r.provider.Name()}
		}
		if err != nil {
			logging.FromContext(ctx).Warn("chat provider failed, using fallback",
				"personality", personality,
				"error", err,
			)
		}
	}

	return Reply{Text: fallbackLine(message, personality), ModelUsed: FallbackModelName}
}

func buildPrompt(message, personality string) string {
	return fmt.Sprintf(
		"You are Elaichi, a %s chat companion helping someone vent about their day. "+
			"Reply in 1-3 sentences, staying in character.\n\nUser: %s",
		personality, message,
	)
}

// fallbackLine picks a stable line per message so repeated sends don't flap.
func fallbackLine(message, personality string) string {
	lines := fallbackLines[personality]
	h := fnv.New32a()
	h.Write([]byte(message))
	return lines[int(h.Sum32())%len(lines)]
}
