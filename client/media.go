package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// AudioUpload is the server's answer to an audio upload: the transcript and
// the rant it created.
type AudioUpload struct {
	Text   string `json:"text"`
	RantID string `json:"rant_id"`
}

// ImageUpload carries the echoed image and its metadata.
type ImageUpload struct {
	ImageData string `json:"image_data"`
	Metadata  struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Size        int    `json:"size"`
		StoredURL   string `json:"stored_url"`
	} `json:"metadata"`
}

// UploadAudio sends a recorded rant for transcription.
func (c *Client) UploadAudio(ctx context.Context, r io.Reader, filename string) (AudioUpload, error) {
	var resp AudioUpload
	err := c.upload(ctx, "/api/media/upload-audio", "audio", filename, "audio/wav", r, &resp)
	return resp, err
}

// UploadImage sends an image rant. The content type is validated before any
// request is made.
func (c *Client) UploadImage(ctx context.Context, r io.Reader, filename, contentType string) (ImageUpload, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return ImageUpload{}, &RequestError{Message: "file must be an image"}
	}
	var resp ImageUpload
	err := c.upload(ctx, "/api/media/upload-image", "image", filename, contentType, r, &resp)
	return resp, err
}

func (c *Client) upload(ctx context.Context, path, field, filename, contentType string, r io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("build upload: %v", err)}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &RequestError{Message: fmt.Sprintf("read upload: %v", err)}
	}
	if err := writer.Close(); err != nil {
		return &RequestError{Message: fmt.Sprintf("finish upload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &RequestError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	return c.send(req, out)
}
