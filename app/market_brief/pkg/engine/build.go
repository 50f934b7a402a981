// Package engine 组装并执行简报生成流水线
package engine

import (
	"context"
	"fmt"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/evidence"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/llm"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/price"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/publish"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/search/factory"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

// BuildOptions 控制从配置组装哪些依赖
type BuildOptions struct {
	// SkipLLM 只渲染 Prompt 时不需要模型客户端
	SkipLLM bool
	// SkipPublisher dry run 或只渲染 Prompt 时不连接发布目标
	SkipPublisher bool
}

// NewFromConfig 按配置创建全部依赖。返回的 cleanup 用于释放发布目标的连接。
func NewFromConfig(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Engine, func(), error) {
	v, err := variant.Lookup(cfg.Variant)
	if err != nil {
		return nil, nil, err
	}

	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}
	collector := evidence.NewCollector(searcher, evidence.Options{
		MaxResults: cfg.Search.MaxResults,
		Topic:      "news",
		TimeRange:  "day",
		Delay:      cfg.Search.Delay,
		Timeout:    cfg.Search.Timeout,
		Enrich:     cfg.Search.Enrich.Enabled,
		MinLength:  cfg.Search.Enrich.MinLength,
		MaxLength:  cfg.Search.Enrich.MaxLength,
		Fetch:      evidence.ReadabilityFetcher(cfg.Search.Enrich.Timeout),
	})

	fetcher, err := price.NewFetcher(cfg.Price)
	if err != nil {
		return nil, nil, fmt.Errorf("价格源初始化失败: %w", err)
	}

	d := Deps{
		Variant:      v,
		Collector:    collector,
		Prices:       fetcher,
		PriceTimeout: cfg.Price.Timeout,
		Location:     cfg.Location(),
	}

	if !opts.SkipLLM {
		gen, err := llm.NewGenerator(ctx, cfg.LLM)
		if err != nil {
			return nil, nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		d.LLM = llm.NewClient(gen, llm.RetryPolicy{
			MaxAttempts: cfg.LLM.MaxAttempts,
			Backoff:     llm.ExponentialBackoff(cfg.LLM.BaseDelay),
		}, cfg.LLM.Timeout)
	}

	cleanup := func() {}
	if !opts.SkipPublisher {
		target, err := publish.New(ctx, cfg.Publish)
		if err != nil {
			return nil, nil, fmt.Errorf("发布目标初始化失败: %w", err)
		}
		d.Publisher = target
		cleanup = func() { _ = target.Close() }
	}

	return New(d), cleanup, nil
}
