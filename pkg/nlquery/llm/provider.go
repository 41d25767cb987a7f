package llm

import (
	"context"
	"time"
)

// Message is a single turn in a chat-style prompt, aligned with the
// handful of roles every provider in this gateway understands:
// "system", "user", "assistant".
type Message struct {
	Role    string
	Content string
}

// Response is what a provider returns for one Generate call.
type Response struct {
	Text     string
	Provider string
	Latency  time.Duration
}

// Provider is anything the gateway can route a generation request to:
// a hosted API (Anthropic, Bedrock) or an OpenAI-compatible/local
// endpoint reached through langchaingo.
type Provider interface {
	// Name identifies the provider in logs, metrics, and
	// ProviderHealth snapshots.
	Name() string

	// Generate sends messages to the underlying model and returns its
	// completion. Implementations should respect ctx cancellation and
	// return promptly once it's done.
	Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error)
}
