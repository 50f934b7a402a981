package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

var defaultCoinGeckoIDs = map[model.Asset]string{
	model.AssetBTC:  "bitcoin",
	model.AssetETH:  "ethereum",
	model.AssetGold: "pax-gold",
}

// CoinGecko simple/price 接口客户端
type CoinGecko struct {
	baseURL string
	apiKey  string
	ids     map[model.Asset]string
	client  *http.Client
}

// NewCoinGecko 创建 CoinGecko 客户端
func NewCoinGecko(cfg config.CoinGeckoConfig) *CoinGecko {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.coingecko.com/api/v3"
	}
	return &CoinGecko{
		baseURL: strings.TrimSuffix(base, "/"),
		apiKey:  cfg.APIKey,
		ids:     assetMapping(defaultCoinGeckoIDs, cfg.IDs),
		client:  http.DefaultClient,
	}
}

var _ Fetcher = (*CoinGecko)(nil)

// Fetch implements Fetcher
func (c *CoinGecko) Fetch(ctx context.Context, assets []model.Asset) (model.PriceSnapshot, error) {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		id, ok := c.ids[a]
		if !ok {
			return nil, fmt.Errorf("no coingecko id for asset %s", a)
		}
		ids = append(ids, id)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("coingecko api error (status %d): %s", res.StatusCode, string(body))
	}

	var body map[string]map[string]float64
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	snap := make(model.PriceSnapshot, len(assets))
	for _, a := range assets {
		quote, ok := body[c.ids[a]]
		if !ok {
			continue
		}
		if v, ok := quote["usd"]; ok {
			snap[a] = v
		}
	}
	return snap, nil
}
