package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You are a JSON generator. Output only the JSON document."

// OpenAIGenerator 任意 OpenAI 兼容接口
type OpenAIGenerator struct {
	chatModel model.BaseChatModel
}

// NewOpenAIGenerator 创建 OpenAI 兼容客户端
func NewOpenAIGenerator(ctx context.Context, baseURL, apiKey, modelName string) (*OpenAIGenerator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &OpenAIGenerator{chatModel: chatModel}, nil
}

// Generate implements Generator
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: prompt},
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", classify(fmt.Errorf("openai generate: %w", err))
	}
	if resp == nil {
		return "", ErrEmptyCompletion
	}
	return resp.Content, nil
}
