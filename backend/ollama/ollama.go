// Package ollama provides a Backend implementation for a local Ollama
// instance using its chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/logging"
)

// Options configures the Ollama client.
type Options struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client talks to the Ollama chat API. It implements backend.Backend.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  logging.Logger
}

// New creates an Ollama client. Defaults come from the OLLAMA_BASE_URL and
// OLLAMA_MODEL environment variables, falling back to a local instance
// running llama3.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL: envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		Model:   envOr("OLLAMA_MODEL", "llama3"),
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}

	return &Client{
		baseURL: opts.BaseURL,
		model:   opts.Model,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate implements backend.Backend. Structured-output requests set
// Ollama's format=json knob.
func (c *Client) Generate(ctx context.Context, req backend.Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	if req.JSONMode {
		payload.Format = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending request to ollama", "model", c.model, "prompt_chars", len(req.Prompt))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama api error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("ollama api error: http %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	if parsed.Message.Content == "" {
		c.logger.Warn("ollama returned empty content")
	}

	return parsed.Message.Content, nil
}

// Available implements backend.Backend by probing the server root.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
