package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LocalModelProvider talks to an OpenAI-compatible endpoint (a local
// model server, or any hosted provider that speaks the same wire
// protocol) through langchaingo, so operators can run the pipeline
// entirely self-hosted with no cloud provider configured.
type LocalModelProvider struct {
	name  string
	model llms.Model
}

// NewLocalModelProvider builds a provider backed by an OpenAI-
// compatible endpoint at baseURL, identified in logs/metrics as name.
func NewLocalModelProvider(name, baseURL, modelName, apiKey string) (*LocalModelProvider, error) {
	opts := []openai.Option{
		openai.WithModel(modelName),
		openai.WithBaseURL(baseURL),
	}
	if apiKey == "" {
		apiKey = "local"
	}
	opts = append(opts, openai.WithToken(apiKey))

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build local model client: %w", err)
	}

	return &LocalModelProvider{name: name, model: model}, nil
}

// Name returns the configured provider name (e.g. "local-llama").
func (p *LocalModelProvider) Name() string { return p.name }

// Generate sends messages to the endpoint via GenerateContent,
// building a system+human message sequence so the extraction
// instructions are honored the same way as the hosted providers.
func (p *LocalModelProvider) Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var msgType llms.ChatMessageType
		switch m.Role {
		case "system":
			msgType = llms.ChatMessageTypeSystem
		case "assistant":
			msgType = llms.ChatMessageTypeAI
		default:
			msgType = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(msgType, m.Content))
	}

	resp, err := p.model.GenerateContent(ctx, content,
		llms.WithTemperature(float64(temperature)),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("local model generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("local model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
