package transform

import (
	"fmt"
	"strings"

	"github.com/rantsmith/backend/internal/models"
)

// LocalModelName identifies output produced by the template fallback.
const LocalModelName = "local-template"

// LocalTemplates renders transformations without any remote model. Output is
// deterministic, never empty, and never fails.
func LocalTemplates(content, transformationType, tone string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "a feeling too big for words"
	}

	var text string
	switch transformationType {
	case models.TransformPoem:
		text = fmt.Sprintf("In words unspoken, feelings deep,\n%s\nThrough darkness comes the light we seek,\nAnd peace at last, our hearts can keep.", excerpt(content, 50))
	case models.TransformRap:
		text = fmt.Sprintf("Yo, listen up, I got something to say,\n%s, that's my way,\nSpitting truth like it's my job,\nTurning rants into beats that throb.", excerpt(content, 30))
	case models.TransformStory:
		text = fmt.Sprintf("There once was a person who felt deeply about their situation. %s And in that moment of vulnerability, they realized that their feelings were the first step toward positive change.", excerpt(content, 150))
	case models.TransformSong:
		text = fmt.Sprintf("[Verse 1]\n%s\n\n[Chorus]\nEvery feeling has its place\nEvery struggle shows your strength\nIn this moment, find your grace\nYou will go to any length", excerpt(content, 100))
	case models.TransformMotivational:
		text = fmt.Sprintf("Your feelings matter, and this experience is shaping you into someone stronger. %s Remember: You are capable of amazing things, and this too shall pass.", excerpt(content, 100))
	case models.TransformComedy:
		text = fmt.Sprintf("So there I was, thinking: %s And then I realized - if this was a sitcom, the laugh track would be going crazy right now!", excerpt(content, 30))
	default:
		text = content
	}

	if prefix := tonePrefix(tone); prefix != "" {
		text = prefix + "\n\n" + text
	}
	return text
}

// excerpt truncates content to at most n characters, marking the cut.
func excerpt(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return fmt.Sprintf("%q", content)
	}
	return fmt.Sprintf("\"%s...\"", string(runes[:n]))
}

func tonePrefix(tone string) string {
	switch tone {
	case "positive":
		return "(with a hopeful heart)"
	case "dramatic":
		return "(spoken from center stage)"
	case "sarcastic":
		return "(with one eyebrow raised)"
	case "emotional":
		return "(voice trembling, but steady)"
	case "humorous":
		return "(barely keeping a straight face)"
	default:
		return ""
	}
}
