// Package backend calls the remote Latin-to-Baybayin transliteration service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/kudlit/internal/script"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

const transliteratePath = "/api/transliterate/"

var (
	// ErrNotConfigured is returned when no backend URL is set.
	ErrNotConfigured = errors.New("transliteration backend is not configured")
	// ErrEmptyTransliteration is returned when the backend answers without text.
	ErrEmptyTransliteration = errors.New("backend returned no transliteration")
)

// Response is the backend transliteration result.
type Response struct {
	InputText      string   `json:"input_text"`
	Direction      string   `json:"transliteration_direction"`
	NormalizedText string   `json:"normalized_text"`
	Length         int      `json:"text_length"`
	Text           string   `json:"transliterated_text"`
	Warnings       []string `json:"warnings"`
}

type wireResponse struct {
	Response
	LegacyLength *int   `json:"length"`
	Error        string `json:"error"`
}

type request struct {
	Text      string `json:"text"`
	Direction string `json:"transliteration_direction"`
}

// Client talks to one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for baseURL. A non-positive timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has a base URL.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// ToBaybayin asks the backend to transliterate text into Baybayin.
func (c *Client) ToBaybayin(ctx context.Context, text string) (Response, error) {
	if !c.Configured() {
		return Response{}, ErrNotConfigured
	}
	payload, err := json.Marshal(request{Text: text, Direction: string(script.ToBaybayin)})
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transliteratePath, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("transliteration request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read backend response: %w", err)
	}
	var wire wireResponse
	decodeErr := json.Unmarshal(body, &wire)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && wire.Error != "" {
			return Response{}, fmt.Errorf("backend status %s: %s", resp.Status, wire.Error)
		}
		return Response{}, fmt.Errorf("unexpected backend status: %s", resp.Status)
	}
	if decodeErr != nil {
		return Response{}, fmt.Errorf("failed to decode backend response: %w", decodeErr)
	}
	out := wire.Response
	if out.Length == 0 && wire.LegacyLength != nil {
		out.Length = *wire.LegacyLength
	}
	if strings.TrimSpace(out.Text) == "" {
		return Response{}, ErrEmptyTransliteration
	}
	return out, nil
}
