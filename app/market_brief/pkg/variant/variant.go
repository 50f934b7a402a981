// Package variant 定义每种简报的固定查询集、跟踪资产与角色设定
package variant

import (
	"fmt"
	"sort"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

// Variant 一种简报的全部静态输入
type Variant struct {
	Name   string
	Role   string
	Focus  string
	Assets []model.Asset
	// Queries 固定顺序的搜索短语，不要求唯一
	Queries []string
	// NewReport 返回该变体的空报告，Prompt 的 schema 与解析目标均来源于它
	NewReport func() model.Report
}

var registry = map[string]Variant{
	Crypto.Name: Crypto,
	Bold.Name:   Bold,
}

// Lookup 按名称获取变体
func Lookup(name string) (Variant, error) {
	v, ok := registry[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown report variant: %s (available: %v)", name, Names())
	}
	return v, nil
}

// Names 已注册的变体名，按字母序
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var macroQueries = []string{
	// Macro & Geopolitics
	"geopolitical news today risk markets oil gold conflict",
	"US China trade war tariffs latest news",
	"Fed interest rate decision FOMC probability next meeting",
	"CPI PPI economic data release today",
	"DXY dollar index 10 year treasury yield today",
}

// Crypto BTC/ETH 日内简报
var Crypto = Variant{
	Name:   "crypto",
	Role:   "Senior Crypto Market Analyst & Day Trading Assistant",
	Focus:  "Keep analysis actionable for crypto day traders",
	Assets: []model.Asset{model.AssetBTC, model.AssetETH},
	Queries: concat(macroQueries, []string{
		// Regulatory
		"SEC crypto lawsuit news today",
		"Bitcoin ETF inflow outflow news today",
		"crypto regulation news today",

		// Whale activity
		"bitcoin whale large transaction today on-chain",
		"crypto whale buying selling news accumulation",

		// Technical
		"bitcoin support resistance levels analysis today",
		"ethereum support resistance levels analysis today",
		"bitcoin technical analysis RSI EMA today",
		"BTC price prediction range today",

		// Sentiment
		"crypto fear and greed index today",
		"bitcoin liquidation heatmap short squeeze",
		"crypto twitter sentiment narrative today",
	}),
	NewReport: func() model.Report { return &model.CryptoReport{} },
}

// Bold BTC/黄金 双资产简报
var Bold = Variant{
	Name:   "bold",
	Role:   "Senior Cross-Asset Analyst covering Bitcoin and Gold",
	Focus:  "Keep analysis actionable for traders holding both BTC and gold",
	Assets: []model.Asset{model.AssetBTC, model.AssetGold},
	Queries: concat(macroQueries, []string{
		// Bitcoin
		"Bitcoin ETF inflow outflow news today",
		"SEC crypto lawsuit news today",
		"bitcoin whale large transaction today on-chain",
		"bitcoin support resistance levels analysis today",
		"crypto fear and greed index today",
		"bitcoin liquidation heatmap short squeeze",

		// Gold flows & demand
		"gold ETF holdings GLD inflow outflow today",
		"central bank gold buying latest",
		"gold physical demand India China premium",
		"gold mine supply news",

		// Gold technicals & sentiment
		"gold price support resistance technical analysis today",
		"gold silver ratio today",
		"gold safe haven demand news today",
	}),
	NewReport: func() model.Report { return &model.BoldReport{} },
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
