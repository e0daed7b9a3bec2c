package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rantsmith/backend/internal/models"
)

type stubProvider struct {
	text string
	err  error
}

func (p *stubProvider) Generate(context.Context, string) (string, error) { return p.text, p.err }
func (p *stubProvider) Name() string                                     { return "stub-model" }

func TestGreetingPerPersonality(t *testing.T) {
	seen := make(map[string]bool)
	for _, personality := range models.Personalities {
		greeting := Greeting(personality)
		if greeting == "" {
			t.Fatalf("empty greeting for %s", personality)
		}
		if seen[greeting] {
			t.Fatalf("duplicate greeting for %s", personality)
		}
		seen[greeting] = true
	}

	if Greeting("unknown") != Greeting(models.PersonalitySupportive) {
		t.Fatal("unknown personality should fall back to supportive greeting")
	}
}

func TestRespondUsesProvider(t *testing.T) {
	responder := NewResponder(&stubProvider{text: "A thoughtful reply."})

	reply := responder.Respond(context.Background(), "my day was awful", models.PersonalitySupportive)
	if reply.Text != "A thoughtful reply." {
		t.Fatalf("expected provider text, got %q", reply.Text)
	}
	if reply.ModelUsed != "stub-model" {
		t.Fatalf("expected stub-model, got %q", reply.ModelUsed)
	}
}

func TestRespondFallsBack(t *testing.T) {
	cases := []*Responder{
		NewResponder(nil),
		NewResponder(&stubProvider{err: errors.New("unavailable")}),
		NewResponder(&stubProvider{text: "   "}),
	}

	for _, responder := range cases {
		reply := responder.Respond(context.Background(), "my day was awful", models.PersonalitySarcastic)
		if strings.TrimSpace(reply.Text) == "" {
			t.Fatal("expected non-empty fallback reply")
		}
		if reply.ModelUsed != FallbackModelName {
			t.Fatalf("expected %s, got %q", FallbackModelName, reply.ModelUsed)
		}
	}
}

func TestRespondFallbackIsStable(t *testing.T) {
	responder := NewResponder(nil)

	first := responder.Respond(context.Background(), "same message", models.PersonalityHumorous)
	second := responder.Respond(context.Background(), "same message", models.PersonalityHumorous)
	if first.Text != second.Text {
		t.Fatalf("expected stable fallback, got %q then %q", first.Text, second.Text)
	}
}

func TestRespondInvalidPersonality(t *testing.T) {
	responder := NewResponder(nil)

	reply := responder.Respond(context.Background(), "hello", "chaotic")
	found := false
	for _, line := range fallbackLines[models.PersonalitySupportive] {
		if line == reply.Text {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected supportive fallback line, got %q", reply.Text)
	}
}
