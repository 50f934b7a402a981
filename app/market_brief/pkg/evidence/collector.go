// Package evidence 按固定查询集收集搜索片段，拼接为交给模型综合的证据文本
package evidence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/search"
)

// ErrNoEvidence 所有查询均失败，视为搜索整体不可用
var ErrNoEvidence = errors.New("search unavailable: every query failed")

// ContentFetcher 抓取 URL 正文
type ContentFetcher func(ctx context.Context, url string) (string, error)

// Options 收集参数
type Options struct {
	// MaxResults 每个查询最多保留的结果数
	MaxResults int
	Topic      string
	TimeRange  string
	// Delay 相邻查询之间的最小间隔，0 表示不限速
	Delay   time.Duration
	Timeout time.Duration

	// Enrich 为 true 时，对短于 MinLength 的摘要抓取原文
	Enrich    bool
	MinLength int
	MaxLength int
	Fetch     ContentFetcher
}

// Collector 证据收集器
type Collector struct {
	searcher search.Searcher
	opts     Options
	limiter  *rate.Limiter
}

// NewCollector 创建收集器
func NewCollector(s search.Searcher, opts Options) *Collector {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	if opts.Enrich && opts.Fetch == nil {
		opts.Fetch = ReadabilityFetcher(15 * time.Second)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	return &Collector{searcher: s, opts: opts, limiter: limiter}
}

// Collect 依次执行每个查询。单个查询失败只记录日志并跳过；
// 全部失败时返回 ErrNoEvidence。
func (c *Collector) Collect(ctx context.Context, queries []string) ([]model.EvidenceItem, error) {
	var items []model.EvidenceItem
	failed := 0

	for i, q := range queries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}

		results, err := c.searchOne(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			logger.Log.Warnf("查询失败，跳过 (%d/%d) [%s]: %v", i+1, len(queries), q, err)
			continue
		}

		for _, r := range results {
			items = append(items, model.EvidenceItem{
				Query:   q,
				Title:   strings.TrimSpace(r.Title),
				Snippet: c.snippet(ctx, r),
				URL:     r.URL,
			})
		}
		logger.Log.Debugf("查询完成 (%d/%d) [%s]: %d 条结果", i+1, len(queries), q, len(results))
	}

	if len(queries) > 0 && failed == len(queries) {
		return nil, ErrNoEvidence
	}
	logger.Log.Infof("证据收集完成: %d 个查询, %d 个失败, %d 条结果", len(queries), failed, len(items))
	return items, nil
}

func (c *Collector) searchOne(ctx context.Context, q string) ([]search.Result, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.searcher.Search(ctx, &search.Request{
		Query:      q,
		Topic:      c.opts.Topic,
		MaxResults: c.opts.MaxResults,
		TimeRange:  c.opts.TimeRange,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	results := resp.Results
	if len(results) > c.opts.MaxResults {
		results = results[:c.opts.MaxResults]
	}
	return results, nil
}

// snippet 优先使用搜索摘要，过短时尝试抓取原文
func (c *Collector) snippet(ctx context.Context, r search.Result) string {
	content := strings.TrimSpace(r.Content)
	if !c.opts.Enrich || len(content) >= c.opts.MinLength || r.URL == "" {
		return content
	}

	fetched, err := c.opts.Fetch(ctx, r.URL)
	if err != nil {
		logger.Log.Warnf("原文抓取失败，使用搜索摘要 [%s]: %v", r.Title, err)
		return content
	}
	fetched = strings.TrimSpace(fetched)
	if len(fetched) <= len(content) {
		return content
	}
	if c.opts.MaxLength > 0 && len(fetched) > c.opts.MaxLength {
		fetched = truncate(fetched, c.opts.MaxLength)
	}
	return fetched
}

// ReadabilityFetcher 使用 go-readability 抓取并提取正文，请求随 ctx 取消
func ReadabilityFetcher(timeout time.Duration) ContentFetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context, pageURL string) (string, error) {
		u, err := url.ParseRequestURI(pageURL)
		if err != nil {
			return "", fmt.Errorf("invalid url %q: %w", pageURL, err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
			return "", fmt.Errorf("not a HTML document: %s", pageURL)
		}

		article, err := readability.FromReader(resp.Body, u)
		if err != nil {
			return "", err
		}
		return article.TextContent, nil
	}
}

// truncate 按字节截断但不切断 UTF-8 字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Blob 把证据拼接为一段文本。结果按到达顺序输出，同一查询的结果归在一起，
// 不做去重与排序。
func Blob(items []model.EvidenceItem) string {
	var sb strings.Builder
	prev := ""
	for i, it := range items {
		if i == 0 || it.Query != prev {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "### %s\n", it.Query)
			prev = it.Query
		}
		fmt.Fprintf(&sb, "- Title: %s\n  Snippet: %s\n  URL: %s\n", it.Title, oneLine(it.Snippet), it.URL)
	}
	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
