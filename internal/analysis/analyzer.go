// Package analysis derives emotion, sentiment, and keywords from rant text
// using keyword heuristics. It is intentionally dependency-free so analysis
// works even when no remote model is configured.
package analysis

import (
	"strings"

	"github.com/rantsmith/backend/internal/models"
)

// Result summarizes one analyzed rant.
type Result struct {
	Emotion           string
	EmotionConfidence float64
	SentimentScore    float64
	Keywords          []string
	Summary           string
}

var emotionKeywords = map[string][]string{
	models.EmotionAngry:      {"angry", "furious", "rage", "mad", "pissed", "hate"},
	models.EmotionFrustrated: {"frustrated", "annoyed", "irritated", "upset"},
	models.EmotionSad:        {"sad", "depressed", "down", "cry", "tears", "heartbroken"},
	models.EmotionAnxious:    {"anxious", "worried", "nervous", "stress", "panic"},
	models.EmotionExcited:    {"excited", "thrilled", "amazing", "awesome", "incredible"},
	models.EmotionHappy:      {"happy", "joy", "great", "wonderful", "fantastic"},
	models.EmotionConfused:   {"confused", "lost", "unsure", "unclear"},
}

var positiveWords = []string{"good", "great", "amazing", "awesome", "love", "happy", "fantastic"}
var negativeWords = []string{"bad", "terrible", "awful", "hate", "horrible", "worst", "sucks"}

// Analyze inspects content and returns the dominant emotion, a sentiment score
// in [-1, 1], and up to ten keywords.
func Analyze(content string) Result {
	lowered := strings.ToLower(content)
	words := strings.Fields(lowered)

	dominant := models.EmotionNeutral
	maxScore := 0
	// Iterate a fixed order so ties resolve deterministically.
	for _, emotion := range []string{
		models.EmotionAngry, models.EmotionFrustrated, models.EmotionSad, models.EmotionAnxious,
		models.EmotionExcited, models.EmotionHappy, models.EmotionConfused,
	} {
		score := 0
		for _, keyword := range emotionKeywords[emotion] {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > maxScore {
			maxScore = score
			dominant = emotion
		}
	}

	confidence := 0.5
	if maxScore > 0 && len(words) > 0 {
		confidence = float64(maxScore) / float64(len(words)) * 10
		if confidence > 1 {
			confidence = 1
		}
	}

	positive, negative := 0, 0
	for _, word := range positiveWords {
		if strings.Contains(lowered, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lowered, word) {
			negative++
		}
	}
	sentiment := 0.0
	if positive+negative > 0 {
		sentiment = float64(positive-negative) / float64(positive+negative)
	}

	var keywords []string
	for _, word := range words {
		if len(word) > 4 {
			keywords = append(keywords, word)
			if len(keywords) == 10 {
				break
			}
		}
	}

	return Result{
		Emotion:           dominant,
		EmotionConfidence: confidence,
		SentimentScore:    sentiment,
		Keywords:          keywords,
		Summary:           summarize(content),
	}
}

func summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= 100 {
		return content
	}
	return string(runes[:100]) + "..."
}
