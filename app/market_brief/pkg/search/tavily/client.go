// Package tavily 通过 Tavily Search API 获取新闻摘要
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/search"
)

const (
	defaultEndpoint   = "https://api.tavily.com/search"
	defaultMaxResults = 3
)

// Client Tavily API 客户端
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient 创建 Tavily 客户端
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   http.DefaultClient,
	}
}

var _ search.Searcher = (*Client)(nil)

// request 只携带本项目用到的参数，其余走 Tavily 默认值
type request struct {
	Query      string `json:"query"`
	Topic      string `json:"topic"`
	MaxResults int    `json:"max_results"`
	TimeRange  string `json:"time_range,omitempty"`
}

type response struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements search.Searcher。未指定条数时每个查询取 3 条
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	body := request{
		Query:      req.Query,
		Topic:      req.Topic,
		MaxResults: req.MaxResults,
		TimeRange:  req.TimeRange,
	}
	if body.MaxResults <= 0 {
		body.MaxResults = defaultMaxResults
	}
	if body.Topic == "" {
		body.Topic = "general"
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, bytes.TrimSpace(msg))
	}

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	results := make([]search.Result, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, search.Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return &search.Response{Results: results}, nil
}
