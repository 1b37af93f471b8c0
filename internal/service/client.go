// Package service talks to the HTTP image services used by the editor:
// background removal and text recognition. Requests carry a PNG body and
// are never retried.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one request.
const DefaultTimeout = 60 * time.Second

// HTTPError is a non-2xx reply.
type HTTPError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.Status, e.URL, e.Body)
}

// Config locates a service.
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Client   *http.Client
	Logger   *slog.Logger
}

type client struct {
	endpoint string
	token    string
	http     *http.Client
	log      *slog.Logger
}

func newClient(cfg Config) client {
	c := client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		token:    cfg.Token,
		http:     cfg.Client,
		log:      cfg.Logger,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// post sends img as PNG and returns the response body.
func (c client) post(ctx context.Context, path string, img image.Image, accept string) ([]byte, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, img); err != nil {
		return nil, fmt.Errorf("encode request image: %w", err)
	}
	url := c.endpoint + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	c.log.Debug("service call", "url", url, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{URL: url, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// BackgroundRemover posts to <endpoint>/remove-background and expects a PNG.
type BackgroundRemover struct {
	client
}

// NewBackgroundRemover returns a client for cfg.
func NewBackgroundRemover(cfg Config) *BackgroundRemover {
	return &BackgroundRemover{client: newClient(cfg)}
}

// RemoveBackground implements engine.BackgroundRemover.
func (b *BackgroundRemover) RemoveBackground(ctx context.Context, img image.Image) (image.Image, error) {
	data, err := b.post(ctx, "/remove-background", img, "image/png")
	if err != nil {
		return nil, err
	}
	out, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode response image: %w", err)
	}
	return out, nil
}

// TextRecognizer posts to <endpoint>/ocr. The reply is either plain text or
// a JSON object with a "text" field.
type TextRecognizer struct {
	client
}

// NewTextRecognizer returns a client for cfg.
func NewTextRecognizer(cfg Config) *TextRecognizer {
	return &TextRecognizer{client: newClient(cfg)}
}

type ocrResponse struct {
	Text string `json:"text"`
}

// Recognize implements engine.TextRecognizer.
func (r *TextRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := r.post(ctx, "/ocr", img, "application/json, text/plain")
	if err != nil {
		return "", err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var res ocrResponse
		if err := json.Unmarshal(trimmed, &res); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return res.Text, nil
	}
	return string(data), nil
}
