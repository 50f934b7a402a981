package prompt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

var testDate = time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)

func flatten(prefix string, v any, out *[]string) {
	m, ok := v.(map[string]any)
	if !ok {
		*out = append(*out, strings.TrimSuffix(prefix, "."))
		return
	}
	for k, child := range m {
		flatten(prefix+k+".", child, out)
	}
}

func TestFields_MatchJSONShape(t *testing.T) {
	for _, v := range []variant.Variant{variant.Crypto, variant.Bold} {
		t.Run(v.Name, func(t *testing.T) {
			data, err := json.Marshal(v.NewReport())
			require.NoError(t, err)
			var doc any
			require.NoError(t, json.Unmarshal(data, &doc))

			var keys []string
			flatten("", doc, &keys)
			assert.ElementsMatch(t, keys, Fields(v.NewReport()))
		})
	}
}

func TestSchema_EveryKeyRendered(t *testing.T) {
	for _, v := range []variant.Variant{variant.Crypto, variant.Bold} {
		s := Schema(v.NewReport(), "January 15, 2026", nil)
		for _, path := range Fields(v.NewReport()) {
			parts := strings.Split(path, ".")
			assert.Contains(t, s, `"`+parts[len(parts)-1]+`": `, "%s: %s", v.Name, path)
		}
	}
}

func TestSchema_Placeholders(t *testing.T) {
	s := Schema(&model.CryptoReport{}, "January 15, 2026", model.PriceSnapshot{model.AssetBTC: 50000})

	assert.True(t, strings.HasPrefix(s, "{\n    \"date\": \"January 15, 2026\",\n    \"btc_price\": \"$50,000.00\",\n"))
	assert.Contains(t, s, `"eth_price": "Current ETH price in USD (e.g. '$X,XXX.XX')"`)
	assert.Contains(t, s, `"bias": "BULLISH" | "BEARISH" | "NEUTRAL" | "WAIT"`)
	assert.Contains(t, s, `"bias_color": "#00FF00" (bullish) | "#FF0000" (bearish) | "#FFFF00" (neutral) | "#FF9500" (wait)`)
	assert.Contains(t, s, `{"title": "Article 1", "url": "https://..."},`)
	assert.Contains(t, s, `{"title": "Article 5", "url": "https://..."}`+"\n")
	assert.NotContains(t, s, "Article 6")
	assert.Contains(t, s, `"updated": "HH:MM UTC"`)
	assert.True(t, strings.HasSuffix(s, "\n}"))
}

func TestRequired(t *testing.T) {
	assert.Equal(t,
		[]string{"date", "btc_price", "gold_price", "macro", "btc", "gold", "bias", "summary"},
		Required(&model.BoldReport{}))
	assert.NotContains(t, Required(model.CryptoReport{}), "updated")
	assert.Empty(t, Required(&model.NewsLink{}))
}

func TestBuild_WithPrices(t *testing.T) {
	out, err := Build(Input{
		Variant:  variant.Crypto,
		Date:     testDate,
		Prices:   model.PriceSnapshot{model.AssetBTC: 97123.456, model.AssetETH: 3450.1},
		Evidence: "### q\n- Title: t\n",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Role: Senior Crypto Market Analyst & Day Trading Assistant\n\n"))
	assert.Contains(t, out, "LIVE PRICES: BTC = $97,123.46, ETH = $3,450.10\n")
	assert.Contains(t, out, "Today's Date: January 15, 2026\n")
	assert.Contains(t, out, "### q\n- Title: t")
	assert.Contains(t, out, `"No recent data"`)
	assert.Contains(t, out, "Output ONLY JSON")
	assert.Contains(t, out, "- Never omit these keys or set them to null or an empty string: date, btc_price, eth_price, macro, regulatory, whales, technicals, sentiment, bias, summary\n")
	for _, b := range model.Biases {
		assert.Contains(t, out, "- "+string(b)+": ")
	}
}

func TestBuild_WithoutPrices(t *testing.T) {
	out, err := Build(Input{Variant: variant.Bold, Date: testDate, Evidence: "e"})
	require.NoError(t, err)

	assert.NotContains(t, out, "LIVE PRICES")
	assert.Contains(t, out, `"gold_price": "Current gold spot price per troy ounce in USD (e.g. '$X,XXX.XX')"`)
	assert.Contains(t, out, "Senior Cross-Asset Analyst")
}

func TestBuild_DateIsUTC(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	out, err := Build(Input{Variant: variant.Crypto, Date: testDate.In(shanghai)})
	require.NoError(t, err)
	assert.Contains(t, out, "Today's Date: January 15, 2026")
	assert.Contains(t, out, "Search Data:\nNo recent data\n")
}

func TestBuild_Deterministic(t *testing.T) {
	in := Input{
		Variant:  variant.Bold,
		Date:     testDate,
		Prices:   model.PriceSnapshot{model.AssetGold: 2650, model.AssetBTC: 98000},
		Evidence: "evidence",
	}
	first, err := Build(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Build(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, first, "LIVE PRICES: BTC = $98,000.00, GOLD = $2,650.00")
}

func TestBuild_NoSchema(t *testing.T) {
	_, err := Build(Input{Variant: variant.Variant{Name: "empty"}})
	assert.Error(t, err)
}
