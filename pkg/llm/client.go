// Package llm provides chat-completion clients used by the batch
// recategorization pipeline. OpenAI-compatible and Anthropic endpoints are
// supported behind one interface.
package llm

import (
	"context"
)

// Client is the interface consumed by classification code. Use it for
// dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string

	// Endpoint returns the configured endpoint, if any.
	Endpoint() string
}

// Config holds configuration for creating a client.
type Config struct {
	Provider string // "openai" or "anthropic"
	Endpoint string // Base URL for OpenAI-compatible endpoints, e.g. "https://api.openai.com/v1"
	Model    string // Model name
	APIKey   string // Optional for local OpenAI-compatible endpoints
}
