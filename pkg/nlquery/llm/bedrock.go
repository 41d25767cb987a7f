package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockProvider calls a model hosted behind AWS Bedrock's runtime
// API, using the Anthropic Messages wire format that Bedrock's Claude
// models accept.
type BedrockProvider struct {
	client  *bedrockruntime.Client
	modelID string
}

// NewBedrockProvider builds a provider bound to an already-configured
// Bedrock runtime client and model ID (e.g.
// "anthropic.claude-3-5-sonnet-20241022-v2:0").
func NewBedrockProvider(client *bedrockruntime.Client, modelID string) *BedrockProvider {
	return &BedrockProvider{client: client, modelID: modelID}
}

// Name identifies this provider as "bedrock".
func (p *BedrockProvider) Name() string { return "bedrock" }

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float32          `json:"temperature"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockResponse struct {
	Content []bedrockContentBlock `json:"content"`
}

// Generate invokes the configured model with the Bedrock Converse-
// compatible Anthropic request body and concatenates the returned
// text blocks.
func (p *BedrockProvider) Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error) {
	var system string
	var chat []bedrockMessage
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		chat = append(chat, bedrockMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		System:           system,
		Messages:         chat,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock request encode failed: %w", err)
	}

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &p.modelID,
		Body:        body,
		ContentType: stringPtr("application/json"),
		Accept:      stringPtr("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invocation failed: %w", err)
	}

	var parsed bedrockResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return "", fmt.Errorf("bedrock response decode failed: %w", err)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func stringPtr(s string) *string { return &s }
