// Package searxng 通过自建 SearXNG 实例的 JSON 接口搜索
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/search"
)

// 部分实例会拦截默认的 Go User-Agent
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client SearXNG API 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建 SearXNG 客户端，timeout 单位为秒，0 表示 30 秒
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: t},
	}
}

var _ search.Searcher = (*Client)(nil)

type response struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements search.Searcher。SearXNG 没有条数参数，按 MaxResults 在本地截断
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	category := "general"
	if req.Topic == "news" {
		category = "news"
	}
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("format", "json")
	q.Set("categories", category)
	if req.TimeRange != "" {
		q.Set("time_range", req.TimeRange)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, msg)
	}

	var out response
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	n := len(out.Results)
	if req.MaxResults > 0 && n > req.MaxResults {
		n = req.MaxResults
	}
	results := make([]search.Result, 0, n)
	for _, r := range out.Results[:n] {
		results = append(results, search.Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return &search.Response{Results: results}, nil
}
