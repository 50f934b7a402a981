package price

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

type fetcherFunc func(ctx context.Context, assets []model.Asset) (model.PriceSnapshot, error)

func (f fetcherFunc) Fetch(ctx context.Context, assets []model.Asset) (model.PriceSnapshot, error) {
	return f(ctx, assets)
}

var cryptoAssets = []model.Asset{model.AssetBTC, model.AssetETH}

func TestFetch_Success(t *testing.T) {
	f := fetcherFunc(func(context.Context, []model.Asset) (model.PriceSnapshot, error) {
		return model.PriceSnapshot{model.AssetBTC: 50000, model.AssetETH: 3000, model.AssetGold: 2700}, nil
	})

	snap := Fetch(context.Background(), f, cryptoAssets, time.Second)
	assert.Equal(t, model.PriceSnapshot{model.AssetBTC: 50000, model.AssetETH: 3000}, snap)
}

func TestFetch_AllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		snap model.PriceSnapshot
		err  error
	}{
		{"network error", nil, errors.New("dial tcp: timeout")},
		{"missing asset", model.PriceSnapshot{model.AssetBTC: 50000}, nil},
		{"zero price", model.PriceSnapshot{model.AssetBTC: 50000, model.AssetETH: 0}, nil},
		{"negative price", model.PriceSnapshot{model.AssetBTC: -1, model.AssetETH: 3000}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fetcherFunc(func(context.Context, []model.Asset) (model.PriceSnapshot, error) {
				return tt.snap, tt.err
			})
			assert.Nil(t, Fetch(context.Background(), f, cryptoAssets, time.Second))
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	f := fetcherFunc(func(ctx context.Context, _ []model.Asset) (model.PriceSnapshot, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.Nil(t, Fetch(context.Background(), f, cryptoAssets, 10*time.Millisecond))
}

func TestCoinGecko_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":50000.0},"ethereum":{"usd":3012.55}}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(config.CoinGeckoConfig{BaseURL: srv.URL + "/", APIKey: "demo"})
	snap, err := c.Fetch(context.Background(), cryptoAssets)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, snap[model.AssetBTC])
	assert.Equal(t, 3012.55, snap[model.AssetETH])
}

func TestCoinGecko_IDOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin,tether-gold", r.URL.Query().Get("ids"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":1},"tether-gold":{"usd":2}}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(config.CoinGeckoConfig{BaseURL: srv.URL, IDs: map[string]string{"gold": "tether-gold"}})
	snap, err := c.Fetch(context.Background(), []model.Asset{model.AssetBTC, model.AssetGold})
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap[model.AssetGold])
}

func TestCoinGecko_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ids") == "bitcoin,ethereum" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewCoinGecko(config.CoinGeckoConfig{BaseURL: srv.URL})
	_, err := c.Fetch(context.Background(), cryptoAssets)
	assert.Error(t, err)

	_, err = c.Fetch(context.Background(), []model.Asset{model.AssetBTC})
	assert.Error(t, err)

	_, err = c.Fetch(context.Background(), []model.Asset{"doge"})
	assert.Error(t, err)

	// 失败时 Fetch 包装返回 nil
	assert.Nil(t, Fetch(context.Background(), c, cryptoAssets, time.Second))
}

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher(config.PriceConfig{})
	require.NoError(t, err)
	assert.IsType(t, &CoinGecko{}, f)

	_, err = NewFetcher(config.PriceConfig{Provider: "finnhub"})
	assert.Error(t, err)

	f, err = NewFetcher(config.PriceConfig{Provider: "finnhub", Finnhub: config.FinnhubConfig{APIKey: "k"}})
	require.NoError(t, err)
	fh := f.(*Finnhub)
	assert.Equal(t, "OANDA:XAU_USD", fh.symbols[model.AssetGold])

	_, err = NewFetcher(config.PriceConfig{Provider: "bloomberg"})
	assert.Error(t, err)
}
