package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// TranscriptionClient calls an OpenAI-compatible /audio/transcriptions endpoint.
type TranscriptionClient struct {
	baseURL string
	model   string
	token   string
	client  *http.Client
}

// NewTranscriptionClient creates a client. Returns nil when no URL is
// configured so the extractor degrades to an empty transcript.
func NewTranscriptionClient(cfg *Config, client *http.Client) *TranscriptionClient {
	if cfg.TranscriptionURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	return &TranscriptionClient{
		baseURL: strings.TrimRight(cfg.TranscriptionURL, "/"),
		model:   cfg.TranscriptionModel,
		token:   cfg.TranscriptionToken,
		client:  client,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", c.model); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", "audio"+extension(mimeType))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrTranscriptionFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode: %w", ErrTranscriptionFailed, err)
	}
	return out.Text, nil
}
