package mediasynth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func decodeDataURL(t *testing.T, url, prefix string) []byte {
	t.Helper()
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("expected prefix %q, got %q", prefix, url[:min(len(url), 40)])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return raw
}

func TestSpeechProducesWAV(t *testing.T) {
	url, err := Speech("today was a very long day")
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}

	raw := decodeDataURL(t, url, "data:audio/wav;base64,")
	if string(raw[:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Fatal("payload is not a WAV file")
	}
}

func TestSpeechDurationScalesWithWords(t *testing.T) {
	short, err := Speech("one two")
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}
	long, err := Speech(strings.Repeat("word ", 40))
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}
	if len(long) <= len(short) {
		t.Fatal("expected longer text to yield a longer clip")
	}
}

func TestSpeechRejectsEmpty(t *testing.T) {
	if _, err := Speech("   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestMemeEmbedsCaption(t *testing.T) {
	url, err := Meme("when the deploy fails on a friday <again>")
	if err != nil {
		t.Fatalf("Meme: %v", err)
	}

	svg := string(decodeDataURL(t, url, "data:image/svg+xml;base64,"))
	if !strings.Contains(svg, "deploy fails") {
		t.Fatal("caption missing from SVG")
	}
	if strings.Contains(svg, "<again>") {
		t.Fatal("caption markup was not escaped")
	}
	if !strings.Contains(svg, "&lt;again&gt;") {
		t.Fatal("expected escaped caption text")
	}
}

func TestMemeCapsLineCount(t *testing.T) {
	url, err := Meme(strings.Repeat("endless complaining about everything ", 30))
	if err != nil {
		t.Fatalf("Meme: %v", err)
	}
	svg := string(decodeDataURL(t, url, "data:image/svg+xml;base64,"))
	if strings.Count(svg, "<text") > maxLines {
		t.Fatalf("expected at most %d lines, got %d", maxLines, strings.Count(svg, "<text"))
	}
}

func TestVideoProducesGIF(t *testing.T) {
	url, err := Video("a story about my terrible commute")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}

	raw := decodeDataURL(t, url, "data:image/gif;base64,")
	if string(raw[:6]) != "GIF89a" {
		t.Fatalf("payload is not a GIF: %q", raw[:6])
	}
}

func TestVideoVariesWithContent(t *testing.T) {
	a, err := Video("first story")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	b, err := Video("a completely different tale")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if a == b {
		t.Fatal("expected different content to yield different clips")
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	for _, line := range wrap("several words that should wrap neatly across lines", 20) {
		if len(line) > 20 {
			t.Fatalf("line too long: %q", line)
		}
	}
}
