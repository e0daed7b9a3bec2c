package mediasynth

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
)

const (
	memeWidth  = 800
	memeHeight = 600
	lineWidth  = 38
	maxLines   = 8
)

// Meme renders the text as a caption card. The output is an SVG image so the
// caption stays legible at any size, returned as a data URL.
func Meme(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}

	lines := wrap(text, lineWidth)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] += "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, memeWidth, memeHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#1a1a2e"/>`, memeWidth, memeHeight)
	fmt.Fprintf(&b, `<rect x="20" y="20" width="%d" height="%d" fill="none" stroke="#e94560" stroke-width="4"/>`,
		memeWidth-40, memeHeight-40)

	startY := memeHeight/2 - (len(lines)-1)*24
	for i, line := range lines {
		fmt.Fprintf(&b,
			`<text x="%d" y="%d" font-family="Impact, sans-serif" font-size="36" fill="#ffffff" stroke="#000000" stroke-width="1" text-anchor="middle">%s</text>`,
			memeWidth/2, startY+i*48, html.EscapeString(line),
		)
	}
	b.WriteString(`</svg>`)

	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(b.String())), nil
}

// wrap splits text into lines of at most width characters on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
