package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 8192

// AnthropicGenerator Anthropic Messages API
type AnthropicGenerator struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicGenerator 创建 Anthropic 客户端，baseURL 为空时使用官方地址
func NewAnthropicGenerator(baseURL, apiKey, model string) *AnthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	if model == "" {
		model = "claude-haiku-4-5"
	}
	return &AnthropicGenerator{client: &client, model: anthropic.Model(model)}
}

// Generate implements Generator
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(fmt.Errorf("anthropic generate: %w", err))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
