// Package publish 把最终报告整体覆盖写入一个外部资源，并提供读取最新报告的能力
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
)

// ErrNotFound 目标资源中还没有报告
var ErrNotFound = errors.New("report not found")

// Publisher 以完整覆盖的方式写入报告，重复写入同一文档结果不变
type Publisher interface {
	Publish(ctx context.Context, doc []byte) error
}

// Reader 读取最近一次发布的报告
type Reader interface {
	Load(ctx context.Context) ([]byte, error)
}

// Target 同时支持写入与读取的发布目标
type Target interface {
	Publisher
	Reader
	Close() error
}

// Marshal 两空格缩进的 JSON，不转义 HTML 字符
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// New 根据配置创建发布目标
func New(ctx context.Context, cfg config.PublishConfig) (Target, error) {
	switch cfg.Target {
	case "", "gist":
		return NewGist(cfg.Gist), nil
	case "file":
		return NewFile(cfg.File.Path), nil
	case "redis":
		r, err := NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "postgres":
		p, err := NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown publish target: %s", cfg.Target)
	}
}
