package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoRecentData 证据缺失时模型应填写的固定占位语
const NoRecentData = "No recent data"

// MaxNewsLinks 报告中保留的新闻链接上限
const MaxNewsLinks = 5

// Asset 跟踪的资产代号
type Asset string

const (
	AssetBTC  Asset = "btc"
	AssetETH  Asset = "eth"
	AssetGold Asset = "gold"
)

// Label 资产展示名，用于 Prompt 中的价格行
func (a Asset) Label() string {
	switch a {
	case AssetGold:
		return "GOLD"
	default:
		return strings.ToUpper(string(a))
	}
}

// PriceSnapshot 资产 -> 美元现价。nil 表示本次价格不可用
type PriceSnapshot map[Asset]float64

// Restrict 只保留指定资产；结果为空时返回 nil
func (p PriceSnapshot) Restrict(assets []Asset) PriceSnapshot {
	if p == nil {
		return nil
	}
	out := make(PriceSnapshot, len(assets))
	for _, a := range assets {
		if v, ok := p[a]; ok {
			out[a] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EvidenceItem 单条搜索结果，作为证据交给模型综合
type EvidenceItem struct {
	Query   string `json:"query"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// NewsLink 报告中引用的新闻
type NewsLink struct {
	Title string `json:"title" desc:"Article {n}"`
	URL   string `json:"url" desc:"https://..."`
}

// Bias 模型给出的交易倾向
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
	BiasWait    Bias = "WAIT"
)

// Biases 固定顺序的全部取值
var Biases = []Bias{BiasBullish, BiasBearish, BiasNeutral, BiasWait}

var biasColors = map[Bias]string{
	BiasBullish: "#00FF00",
	BiasBearish: "#FF0000",
	BiasNeutral: "#FFFF00",
	BiasWait:    "#FF9500",
}

// BiasColor 返回 bias 对应的展示颜色，未知取值返回空串
func BiasColor(b Bias) string {
	return biasColors[b]
}

// Valid 是否为已知取值
func (b Bias) Valid() bool {
	_, ok := biasColors[b]
	return ok
}

// UnmarshalJSON 容忍大小写与首尾空白，拒绝未知取值
func (b *Bias) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Bias(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return fmt.Errorf("unknown bias %q", s)
	}
	*b = v
	return nil
}

// FormatUSD 格式化为带千分位、两位小数的美元字符串，例如 $50,000.00
func FormatUSD(v float64) string {
	return message.NewPrinter(language.English).Sprintf("$%.2f", v)
}

// Report 各报告变体的公共行为，供 Normalizer 做权威字段覆盖。
// 价格字段由 schema:"price" 与 asset tag 标识，按 tag 覆盖。
type Report interface {
	SetUpdated(value string)
	Stance() Bias
	SetBiasColor(color string)
	// TrimNewsLinks 截断新闻链接
	TrimNewsLinks(max int)
}
