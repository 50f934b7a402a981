// Package llm 把 Prompt 发送给文本生成模型并返回原始文本
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
)

// ErrEmptyCompletion 模型返回空文本，按可重试错误处理
var ErrEmptyCompletion = errors.New("empty completion")

// Generator 单次调用模型
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator 根据配置创建模型客户端
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "gemini":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		g, err := NewOpenAIGenerator(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "anthropic":
		return NewAnthropicGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// Client 带重试的推理客户端
type Client struct {
	gen     Generator
	policy  RetryPolicy
	timeout time.Duration
}

// NewClient 创建推理客户端，timeout 作用于单次调用，0 表示不限
func NewClient(gen Generator, policy RetryPolicy, timeout time.Duration) *Client {
	return &Client{gen: gen, policy: policy, timeout: timeout}
}

// Generate 发送 Prompt，失败时按策略重试，用尽后返回最后一次错误
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return Retry(ctx, c.policy, func(ctx context.Context, attempt int) (string, error) {
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		logger.Log.Infof("调用模型 (attempt %d)", attempt+1)
		start := time.Now()
		out, err := c.gen.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", ErrEmptyCompletion
		}
		logger.Log.Infof("模型返回 %d 字节，耗时 %s", len(out), time.Since(start).Round(time.Millisecond))
		return out, nil
	})
}
