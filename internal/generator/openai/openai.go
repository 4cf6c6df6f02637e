// Package openai implements generator.Generator against an OpenAI-compatible
// chat-completions endpoint.
//
// The API surface we need is one POST to {BaseURL}/chat/completions with a
// system + user message pair, so the client is a thin net/http wrapper rather
// than a full SDK. Everything protocol-specific (request/response shapes,
// auth header, model name) lives in this package; the rest of the app only
// sees the Generator interface.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/masterlist/internal/generator"
	"github.com/sakif/masterlist/internal/model"
)

// compile-time check that *Client implements generator.Generator
var _ generator.Generator = (*Client)(nil)

// Client calls a chat-completions API to generate suggestions and stories.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Client. The API key is required — without one every call
// would just be a guaranteed 401 round-trip, so we fail construction instead
// and let the caller decide to run without enrichment.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("openai: base URL is required")
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// SuggestItems asks the model for three new item names for the list.
func (c *Client) SuggestItems(ctx context.Context, list *model.MasterList) (string, error) {
	return c.complete(ctx,
		generator.SuggestionsSystemPrompt,
		generator.SuggestionsPrompt(list),
		c.config.SuggestionTokens,
	)
}

// TellStory asks the model for a mood-flavoured story built from the list's items.
func (c *Client) TellStory(ctx context.Context, list *model.MasterList, mood model.StoryMood) (string, error) {
	return c.complete(ctx,
		generator.StorySystemPrompt,
		generator.StoryPrompt(list, mood),
		0, // no token cap — the prompt bounds the story by sentence count
	)
}

// Wire types for the chat-completions endpoint. Only the fields we actually
// read or write; unknown response fields are ignored by encoding/json.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete performs a single chat-completions round trip and returns the
// trimmed content of the first choice. An empty reply is returned as "" with
// a nil error — the caller decides what an empty generation means.
func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encoding request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	// Bound the read — a misbehaving endpoint must not OOM us.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("openai: reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("openai: decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("openai: chat completions returned %d: %s", resp.StatusCode, msg)
	}

	if len(parsed.Choices) == 0 {
		c.logger.Warn("generation returned no choices", slog.String("model", c.config.Model))
		return "", nil
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
