package mediasynth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"strings"
)

const (
	videoWidth  = 320
	videoHeight = 240
	videoFrames = 12
)

// Video renders a short animated clip themed on the text. Frames cycle a
// palette seeded by the content so different stories get different moods.
// The result is an animated GIF data URL.
func Video(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}

	seed := 0
	for _, r := range text {
		seed += int(r)
	}

	anim := &gif.GIF{LoopCount: 0}
	for frame := 0; frame < videoFrames; frame++ {
		palette := framePalette(seed, frame)
		img := image.NewPaletted(image.Rect(0, 0, videoWidth, videoHeight), palette)
		for y := 0; y < videoHeight; y++ {
			for x := 0; x < videoWidth; x++ {
				// Diagonal bands drifting one palette slot per frame.
				band := (x + y + frame*20) / 40 % len(palette)
				img.SetColorIndex(x, y, uint8(band))
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 12) // hundredths of a second
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return "", fmt.Errorf("encode gif: %w", err)
	}
	return "data:image/gif;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func framePalette(seed, frame int) color.Palette {
	palette := make(color.Palette, 8)
	for i := range palette {
		base := (seed + frame*7 + i*31) % 256
		palette[i] = color.RGBA{
			R: uint8((base * 3) % 256),
			G: uint8((base*5 + 80) % 256),
			B: uint8((base*7 + 160) % 256),
			A: 255,
		}
	}
	return palette
}
