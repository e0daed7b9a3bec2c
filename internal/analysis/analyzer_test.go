package analysis

import (
	"strings"
	"testing"

	"github.com/rantsmith/backend/internal/models"
)

func TestAnalyzeDetectsEmotion(t *testing.T) {
	cases := []struct {
		content string
		emotion string
	}{
		{"I am so angry and furious about this", models.EmotionAngry},
		{"totally frustrated and annoyed with my commute", models.EmotionFrustrated},
		{"feeling sad and heartbroken today", models.EmotionSad},
		{"so worried and anxious about the exam", models.EmotionAnxious},
		{"this is awesome, I am thrilled", models.EmotionExcited},
		{"my keyboard stopped working", models.EmotionNeutral},
	}

	for _, tc := range cases {
		got := Analyze(tc.content)
		if got.Emotion != tc.emotion {
			t.Errorf("Analyze(%q).Emotion = %q, want %q", tc.content, got.Emotion, tc.emotion)
		}
	}
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	result := Analyze("angry furious rage mad")
	if result.EmotionConfidence <= 0 || result.EmotionConfidence > 1 {
		t.Fatalf("confidence out of range: %v", result.EmotionConfidence)
	}

	neutral := Analyze("the meeting moved to thursday")
	if neutral.EmotionConfidence != 0.5 {
		t.Fatalf("expected default 0.5 confidence, got %v", neutral.EmotionConfidence)
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	positive := Analyze("this is great and amazing, I love it")
	if positive.SentimentScore <= 0 {
		t.Fatalf("expected positive sentiment, got %v", positive.SentimentScore)
	}

	negative := Analyze("this is terrible, the worst, it sucks")
	if negative.SentimentScore >= 0 {
		t.Fatalf("expected negative sentiment, got %v", negative.SentimentScore)
	}

	mixed := Analyze("nothing notable happened")
	if mixed.SentimentScore != 0 {
		t.Fatalf("expected zero sentiment, got %v", mixed.SentimentScore)
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	result := Analyze("the gigantic spreadsheet crashed during quarterly planning again")
	for _, keyword := range result.Keywords {
		if len(keyword) <= 4 {
			t.Fatalf("keyword %q too short", keyword)
		}
	}

	many := Analyze(strings.Repeat("enormous problem everywhere honestly ", 10))
	if len(many.Keywords) > 10 {
		t.Fatalf("expected at most 10 keywords, got %d", len(many.Keywords))
	}
}

func TestAnalyzeSummaryTruncates(t *testing.T) {
	long := strings.Repeat("a", 150)
	result := Analyze(long)
	if result.Summary != strings.Repeat("a", 100)+"..." {
		t.Fatalf("unexpected summary %q", result.Summary)
	}

	short := Analyze("short rant here")
	if short.Summary != "short rant here" {
		t.Fatalf("expected summary to echo short content, got %q", short.Summary)
	}
}
