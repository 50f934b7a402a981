package price

import (
	"context"
	"fmt"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

var defaultFinnhubSymbols = map[model.Asset]string{
	model.AssetBTC:  "BINANCE:BTCUSDT",
	model.AssetETH:  "BINANCE:ETHUSDT",
	model.AssetGold: "OANDA:XAU_USD",
}

// Finnhub 使用 Finnhub quote 接口逐个资产报价
type Finnhub struct {
	client  *finnhub.DefaultApiService
	symbols map[model.Asset]string
}

// NewFinnhub 创建 Finnhub 客户端
func NewFinnhub(cfg config.FinnhubConfig) *Finnhub {
	fc := finnhub.NewConfiguration()
	fc.AddDefaultHeader("X-Finnhub-Token", cfg.APIKey)
	return &Finnhub{
		client:  finnhub.NewAPIClient(fc).DefaultApi,
		symbols: assetMapping(defaultFinnhubSymbols, cfg.Symbols),
	}
}

var _ Fetcher = (*Finnhub)(nil)

// Fetch implements Fetcher
func (f *Finnhub) Fetch(ctx context.Context, assets []model.Asset) (model.PriceSnapshot, error) {
	snap := make(model.PriceSnapshot, len(assets))
	for _, a := range assets {
		symbol, ok := f.symbols[a]
		if !ok {
			return nil, fmt.Errorf("no finnhub symbol for asset %s", a)
		}
		quote, _, err := f.client.Quote(ctx).Symbol(symbol).Execute()
		if err != nil {
			return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
		}
		snap[a] = float64(quote.GetC())
	}
	return snap, nil
}
