// Package search 定义通用的网页搜索接口，具体 provider 位于子包中
package search

import "context"

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      string // "news" or "general"
	MaxResults int
	TimeRange  string // day, week, month, year；为空表示不限
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果，作为证据原样交给模型
type Result struct {
	Title   string
	URL     string
	Content string
}

// SearcherFunc 允许用普通函数实现 Searcher
type SearcherFunc func(ctx context.Context, req *Request) (*Response, error)

// Search implements Searcher
func (f SearcherFunc) Search(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
