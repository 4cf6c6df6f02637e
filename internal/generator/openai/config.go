package openai

import (
	"time"
)

// Config holds the configuration for the chat-completions client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	// Any OpenAI-compatible endpoint works.
	BaseURL string
	// APIKey is sent as a bearer token on every request.
	APIKey string
	// Model is the chat model to ask for.
	Model string
	// SuggestionTokens caps the completion length for item suggestions.
	// Suggestions are a single fixed-format sentence, so a small cap keeps
	// replies cheap and on-format. Stories are not capped this way — their
	// length is bounded by the prompt's sentence budget instead.
	SuggestionTokens int
	// Timeout is the maximum amount of time a single generation call can take.
	Timeout time.Duration
}

// DefaultConfig provides sensible defaults for the OpenAI API.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:          "https://api.openai.com/v1",
		APIKey:           apiKey,
		Model:            "gpt-4o",
		SuggestionTokens: 50,
		// Generation calls are slow; CRUD waits on them, so keep a hard cap.
		Timeout: 30 * time.Second,
	}
}
