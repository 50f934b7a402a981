// Package price 获取跟踪资产的权威美元报价
package price

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

// Fetcher 报价源
type Fetcher interface {
	Fetch(ctx context.Context, assets []model.Asset) (model.PriceSnapshot, error)
}

// Fetch 以全有或全无的方式获取报价：任何错误、缺失资产或非正数价格都返回 nil，
// 调用方据此退回模型估价。该函数从不返回错误。
func Fetch(ctx context.Context, f Fetcher, assets []model.Asset, timeout time.Duration) model.PriceSnapshot {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	snap, err := f.Fetch(ctx, assets)
	if err != nil {
		logger.Log.Warnf("价格获取失败，将使用模型估价: %v", err)
		return nil
	}

	out := make(model.PriceSnapshot, len(assets))
	for _, a := range assets {
		v, ok := snap[a]
		if !ok || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			logger.Log.Warnf("价格数据不完整 [%s=%v]，丢弃整个快照", a, v)
			return nil
		}
		out[a] = v
	}
	return out
}

// NewFetcher 根据配置创建报价源
func NewFetcher(cfg config.PriceConfig) (Fetcher, error) {
	switch cfg.Provider {
	case "", "coingecko":
		return NewCoinGecko(cfg.CoinGecko), nil
	case "finnhub":
		if cfg.Finnhub.APIKey == "" {
			return nil, fmt.Errorf("finnhub api key is missing")
		}
		return NewFinnhub(cfg.Finnhub), nil
	default:
		return nil, fmt.Errorf("unknown price provider: %s", cfg.Provider)
	}
}

// assetMapping 默认映射叠加配置覆盖
func assetMapping(defaults map[model.Asset]string, overrides map[string]string) map[model.Asset]string {
	m := make(map[model.Asset]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		m[k] = v
	}
	for k, v := range overrides {
		m[model.Asset(k)] = v
	}
	return m
}
