package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// MediaRef carries a rant already created by a media upload, so the
// orchestrator can reuse it instead of submitting a new one.
type MediaRef struct {
	RantID string
	Text   string
}

// Input describes one transformation request.
type Input struct {
	Content string
	Media   *MediaRef
	Type    string
	Tone    string
	Privacy string
}

// Output is the assembled transformation. Text is always non-empty; the
// media fields are nil-able best-effort extras.
type Output struct {
	RantID    string
	Text      string
	ModelUsed string
	Audio     string
	Image     string
	Video     string
}

// ErrNothingToTransform is returned when the input has neither content nor
// media. It is the only error Transform produces.
var ErrNothingToTransform = fmt.Errorf("nothing to transform: content is empty")

// Orchestrator drives the full submit-transform-enrich flow and reports
// progress through the notification center.
type Orchestrator struct {
	client *Client
	notify *NotificationCenter
	logger *slog.Logger
}

// NewOrchestrator wires the flow together. The notification center may be
// nil when no UI feedback is wanted.
func NewOrchestrator(c *Client, notify *NotificationCenter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{client: c, notify: notify, logger: logger}
}

// Transform runs the whole flow: validate, submit (or reuse the media rant),
// render the primary text, then fan out to secondary media concurrently.
// After validation it never fails: a dead backend still yields local text.
func (o *Orchestrator) Transform(ctx context.Context, input Input) (Output, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && input.Media != nil {
		content = strings.TrimSpace(input.Media.Text)
	}
	if content == "" {
		o.warn("Please enter a rant or record one first!")
		return Output{}, ErrNothingToTransform
	}

	if input.Type == "" {
		input.Type = "poem"
	}
	if input.Tone == "" {
		input.Tone = "neutral"
	}

	out := Output{}

	if input.Media != nil && input.Media.RantID != "" {
		out.RantID = input.Media.RantID
	} else {
		rantID, _, err := o.client.SubmitRant(ctx, SubmitRantInput{
			Content:            content,
			TransformationType: input.Type,
			Tone:               input.Tone,
			Privacy:            input.Privacy,
		})
		if err != nil {
			o.logger.Warn("rant submission failed, continuing with local transformation", "error", err)
		} else {
			out.RantID = rantID
		}
	}

	if out.RantID != "" {
		if result, err := o.client.TransformWithAI(ctx, out.RantID, input.Type, input.Tone); err == nil {
			out.Text = result.Text
			out.ModelUsed = result.ModelUsed
		} else {
			o.logger.Warn("remote transformation failed, using local fallback", "error", err, "rantId", out.RantID)
		}
	}
	if out.Text == "" {
		out.Text = MockTransformation(content, input.Type)
		out.ModelUsed = "local-mock"
	}

	if out.RantID != "" {
		o.fanOut(ctx, &out, input.Type)
	}

	o.success("Your rant has been transformed!")
	return out, nil
}

// fanOut requests the secondary media for the transformation type. Each
// request runs in its own goroutine; a failure only leaves its field empty.
func (o *Orchestrator) fanOut(ctx context.Context, out *Output, transformationType string) {
	var wg sync.WaitGroup

	run := func(kind string, field *string, fetch func(context.Context, string) (string, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := fetch(ctx, out.RantID)
			if err != nil {
				o.logger.Warn("secondary media generation failed", "kind", kind, "error", err, "rantId", out.RantID)
				return
			}
			*field = data
		}()
	}

	switch transformationType {
	case "song", "poem", "rap":
		run("speech", &out.Audio, o.client.GenerateSpeech)
	case "comedy", "motivational":
		run("meme", &out.Image, o.client.GenerateMeme)
	case "story":
		run("video", &out.Video, o.client.GenerateVideo)
	}

	wg.Wait()
}

// MockTransformation renders the offline fallback for a transformation type.
// The output is deterministic and never empty.
func MockTransformation(content, transformationType string) string {
	switch transformationType {
	case "poem":
		return fmt.Sprintf("In the depths of thought I ponder,\nWords that make my heart grow fonder,\n%q\nTransformed to verse, a sight to wonder.", clip(content, 50))
	case "rap":
		return fmt.Sprintf("Yo, listen up, I got something to say,\n%q that's my way,\nSpitting truth like it's my job,\nTurning rants into beats that throb.", clip(content, 30))
	case "story":
		return fmt.Sprintf("Once upon a time, there was someone who felt: %q This feeling would lead them on an unexpected journey of self-discovery...", clip(content, 40))
	case "song":
		return fmt.Sprintf("(Verse 1)\n%q\nThat's the feeling in my heart\n(Chorus)\nSinging out loud, breaking free\nThis is who I'm meant to be...", clip(content, 30))
	case "motivational":
		return fmt.Sprintf("Remember this: %q - These feelings are valid, but they don't define you. Every challenge is a stepping stone to greatness. You've got this!", clip(content, 40))
	case "comedy":
		return fmt.Sprintf("So there I was, thinking: %q And then I realized - if this was a sitcom, the laugh track would be going crazy right now!", clip(content, 30))
	default:
		return content
	}
}

func clip(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

func (o *Orchestrator) success(message string) {
	if o.notify != nil {
		o.notify.Notify(NotifySuccess, "Transformation complete", message)
	}
}

func (o *Orchestrator) warn(message string) {
	if o.notify != nil {
		o.notify.Notify(NotifyWarning, "Cannot transform", message)
	}
}
