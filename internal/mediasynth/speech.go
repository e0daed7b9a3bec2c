// Package mediasynth renders audio, image, and video artifacts for generated
// content. Artifacts are returned as data URLs so the API works without an
// object store; when one is configured the handlers upload the bytes instead.
package mediasynth

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	sampleRate   = 8000
	maxSpeechSec = 30
)

// Speech synthesizes a spoken-word style audio clip for the text. The clip is
// a tone sequence whose pitch follows the words, one syllable-ish beat per
// word, encoded as 16-bit mono WAV.
func Speech(text string) (string, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", fmt.Errorf("empty text")
	}

	secondsPerWord := 0.35
	duration := float64(len(words)) * secondsPerWord
	if duration > maxSpeechSec {
		duration = maxSpeechSec
	}

	total := int(duration * sampleRate)
	samples := make([]int16, total)
	perWord := total / len(words)
	if perWord == 0 {
		perWord = 1
	}

	for i := range samples {
		word := i / perWord
		if word >= len(words) {
			word = len(words) - 1
		}
		// Pitch varies with word length so the output has cadence.
		freq := 160 + float64(len(words[word])%8)*30
		envelope := fade(i%perWord, perWord)
		samples[i] = int16(envelope * 12000 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}

	wav, err := encodeWAV(samples)
	if err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav), nil
}

// fade applies a short attack/release so word boundaries don't click.
func fade(pos, length int) float64 {
	ramp := length / 8
	if ramp == 0 {
		return 1
	}
	switch {
	case pos < ramp:
		return float64(pos) / float64(ramp)
	case pos > length-ramp:
		return float64(length-pos) / float64(ramp)
	default:
		return 1
	}
}

func encodeWAV(samples []int16) ([]byte, error) {
	var buf bytes.Buffer
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
