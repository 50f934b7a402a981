package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NewsLink 新闻链接
type NewsLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Price 单个资产的展示价格
type Price struct {
	Asset string
	Value string
}

// Brief 最近一次发布的简报。Raw 为发布时的原始文档
type Brief struct {
	Date      string
	Bias      string
	BiasColor string
	Summary   string
	Updated   string
	// Prices 顶层 *_price 字段，按资产名排序
	Prices    []Price
	NewsLinks []NewsLink
	Raw       []byte
}

// ParseBrief 从发布的文档中提取展示所需字段，兼容各报告变体
func ParseBrief(raw []byte) (*Brief, error) {
	var head struct {
		Date      string     `json:"date"`
		Bias      string     `json:"bias"`
		BiasColor string     `json:"bias_color"`
		Summary   string     `json:"summary"`
		Updated   string     `json:"updated"`
		NewsLinks []NewsLink `json:"news_links"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}
	var prices []Price
	for k, v := range fields {
		asset, ok := strings.CutSuffix(k, "_price")
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		prices = append(prices, Price{Asset: strings.ToUpper(asset), Value: s})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Asset < prices[j].Asset })

	return &Brief{
		Date:      head.Date,
		Bias:      head.Bias,
		BiasColor: head.BiasColor,
		Summary:   head.Summary,
		Updated:   head.Updated,
		Prices:    prices,
		NewsLinks: head.NewsLinks,
		Raw:       raw,
	}, nil
}
